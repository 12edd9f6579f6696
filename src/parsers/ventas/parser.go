// backend/src/parsers/ventas/parser.go
package ventas

import (
	"fmt"

	"github.com/username/ventascontables/backend/src/grid"
	"github.com/username/ventascontables/backend/src/models"
)

// Fixed column offsets of the POS sales export. The layout is a static
// contract of the report format; every positional access in the scanner
// goes through these names.
const (
	colFecha   = 0
	colCliente = 5
	colDNIRUC  = 6
	colNumero  = 8
	colSerie   = 9
	colTotal   = 17
	colEstado  = 20

	colDetalleProducto = 2
	colDetalleImporte  = 5
	colDetalleCantidad = 6
)

const (
	// Literal marker row that precedes a receipt's detail sub-table.
	marcaDetalle = "Detalle de venta"
	// The marker is searched at most this many rows below the header.
	ventanaMarca = 7
	// Rows between the marker and the first detail row (marker row plus
	// the detail sub-table's own header).
	saltoTrasMarca = 2
	// Product-name sentinel that terminates a detail block.
	productoSinNombre = "N/N"

	maxCampoTexto = 40
)

// Bag-fee rule: the POS lists the plastic-bag charge as a product; it is
// split into the original code with the fixed surcharge and the surcharge
// account code with the residual quantity.
const (
	cargoBolsa       = 0.5
	codigoCargoBolsa = "701112"
)

var codigosBolsa = map[string]bool{
	"Bolsa -": true,
	"Bolsa":   true,
}

// Extractor walks a decoded sales grid and reconstructs receipts. The
// combo dictionary tells it how many detail rows a combo product bundles,
// so the bundled sub-items are not parsed as separate sales.
type Extractor struct {
	combos map[string]int
}

func NewExtractor(combos map[string]int) *Extractor {
	return &Extractor{combos: combos}
}

// Scanner states. Modeling the dual-cursor scan explicitly keeps the
// skip-and-continue edges testable on their own.
type estadoScan int

const (
	buscandoCabecera estadoScan = iota
	buscandoMarca
	leyendoDetalle
)

// Extraer scans the grid top to bottom and returns the receipts found,
// plus a diagnostic per unit it had to skip. Headers may appear densely;
// the cursor only ever advances one row past a header, so re-scanning
// rows already consumed as detail is expected and harmless.
func (e *Extractor) Extraer(g *grid.Grid) ([]models.Boleta, []models.Diagnostico) {
	var (
		boletas  []models.Boleta
		omitidos []models.Diagnostico
		actual   models.Boleta
		detalle  int
	)

	st := buscandoCabecera
	i := 0
	for {
		switch st {
		case buscandoCabecera:
			if i >= g.NumRows() {
				return boletas, omitidos
			}
			estado := g.At(i, colEstado).TrimmedText()
			if estado != models.EstadoActiva && estado != models.EstadoAnulada {
				i++
				continue
			}
			b, ok := e.leerCabecera(g, i, estado, &omitidos)
			if !ok {
				i++
				continue
			}
			actual = b
			st = buscandoMarca

		case buscandoMarca:
			offset, found := buscarMarca(g, i)
			if !found {
				omitidos = append(omitidos, models.Diagnostico{
					Fila:   i,
					Motivo: fmt.Sprintf("cabecera sin %q en las %d filas siguientes", marcaDetalle, ventanaMarca),
				})
				i++
				st = buscandoCabecera
				continue
			}
			detalle = i + offset + saltoTrasMarca
			st = leyendoDetalle

		case leyendoDetalle:
			actual.Items = e.leerDetalle(g, detalle)
			boletas = append(boletas, actual)
			i++
			st = buscandoCabecera
		}
	}
}

func (e *Extractor) leerCabecera(g *grid.Grid, fila int, estado string, omitidos *[]models.Diagnostico) (models.Boleta, bool) {
	total, ok := g.At(fila, colTotal).TryNumber()
	if !ok {
		*omitidos = append(*omitidos, models.Diagnostico{
			Fila:   fila,
			Motivo: "total de boleta no numérico",
		})
		return models.Boleta{}, false
	}

	dniruc, cliente := datosCliente(g, fila)

	return models.Boleta{
		Fecha:   leerFecha(g.At(fila, colFecha)),
		DNIRUC:  recortar(dniruc, maxCampoTexto),
		Cliente: recortar(cliente, maxCampoTexto),
		Numero:  g.At(fila, colNumero).TrimmedText(),
		Serie:   g.At(fila, colSerie).TrimmedText(),
		Total:   total,
		Estado:  estado,
	}, true
}

// datosCliente reads the customer identity, collapsing the generic
// walk-in DNI/RUC to a fixed placeholder name.
func datosCliente(g *grid.Grid, fila int) (dniruc, cliente string) {
	dniruc = g.At(fila, colDNIRUC).TrimmedText()
	cliente = g.At(fila, colCliente).TrimmedText()
	if dniruc == models.DNIRUCGenerico {
		return models.DNIRUCGenerico, models.ClienteGenerico
	}
	return dniruc, cliente
}

func buscarMarca(g *grid.Grid, fila int) (int, bool) {
	for n := 0; n < ventanaMarca; n++ {
		if g.At(fila+n, colFecha).TrimmedText() == marcaDetalle {
			return n, true
		}
	}
	return 0, false
}

// leerDetalle reads line items starting at the detail cursor. A blank or
// non-numeric amount cell, the N/N sentinel, or a malformed quantity all
// terminate the block; they never abort the extraction.
func (e *Extractor) leerDetalle(g *grid.Grid, cursor int) []models.ItemVenta {
	var items []models.ItemVenta
	for {
		if _, ok := g.At(cursor, colDetalleImporte).TryNumber(); !ok {
			break
		}
		producto := g.At(cursor, colDetalleProducto).TrimmedText()
		if producto == productoSinNombre {
			break
		}
		cantidad, ok := g.At(cursor, colDetalleCantidad).TryNumber()
		if !ok {
			break
		}

		if codigosBolsa[producto] {
			items = append(items,
				models.ItemVenta{Producto: producto, Cantidad: cargoBolsa},
				models.ItemVenta{Producto: codigoCargoBolsa, Cantidad: cantidad},
			)
		} else {
			items = append(items, models.ItemVenta{Producto: producto, Cantidad: cantidad})
		}

		// A skip below 1 would stall the cursor on the same row forever;
		// such a combo advances like a regular item.
		if salto, ok := e.combos[producto]; ok && salto > 1 {
			cursor += salto
		} else {
			cursor++
		}
	}
	return items
}

func leerFecha(c grid.Cell) models.FechaVenta {
	if t, ok := c.TryDate(); ok {
		return models.FechaVenta{Raw: c.TrimmedText(), Time: t, Valid: true}
	}
	return models.FechaVenta{Raw: c.TrimmedText()}
}

func recortar(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
