// backend/src/processors/concar.go
package processors

import (
	"sort"

	"github.com/username/ventascontables/backend/src/models"
)

const maxGlosa = 40

// ConcarFormatter groups, formats and orders raw ledger lines into the
// final Concar import table.
type ConcarFormatter struct{}

func NewConcarFormatter() *ConcarFormatter { return &ConcarFormatter{} }

type grupoClave struct {
	nrDoc  string
	cuenta string
}

// Finalizar groups lines by (Nr.Doc, account) summing the amount and
// keeping every other field from the first line of the group, in input
// order. Running it again over already-unique rows changes nothing.
func (f *ConcarFormatter) Finalizar(lineas []models.AsientoLinea) []models.FilaConcar {
	filas := make([]models.FilaConcar, 0, len(lineas))
	indice := make(map[grupoClave]int)

	for _, linea := range lineas {
		clave := grupoClave{nrDoc: linea.NrDoc, cuenta: linea.Cuenta}
		if pos, visto := indice[clave]; visto {
			filas[pos].Importe += linea.Importe
			continue
		}
		indice[clave] = len(filas)
		filas = append(filas, formatear(linea))
	}

	ordenar(filas)
	return filas
}

func formatear(l models.AsientoLinea) models.FilaConcar {
	return models.FilaConcar{
		SubDiario:       l.SubDiario,
		NumComprobante:  l.NumComprobante,
		Fecha:           l.Fecha.Formato(),
		CodigoMoneda:    l.CodigoMoneda,
		Glosa:           recortarGlosa(l.Glosa),
		TipoCambio:      l.TipoCambio,
		TipoConversion:  l.TipoConversion,
		FlagConversion:  l.FlagConversion,
		FechaTipoCambio: l.FechaTipoCambio,
		Cuenta:          l.Cuenta,
		Anexo:           l.Anexo,
		CentroCosto:     l.CentroCosto,
		DebeHaber:       l.DebeHaber,
		Importe:         l.Importe,
		ImporteDolares:  l.ImporteDolares,
		ImporteSoles:    l.ImporteSoles,
		TipoDoc:         l.TipoDoc,
		NrDoc:           l.NrDoc,
		FechaDoc:        l.FechaDoc.Formato(),
		FechaVenc:       l.FechaVenc.Formato(),
	}
}

// ordenar applies the Concar ordering contract: subdiario, voucher and
// debit-before-credit ascending, then amount descending. 'D' < 'H' holds
// lexicographically, so debits always precede credits of a voucher.
func ordenar(filas []models.FilaConcar) {
	sort.SliceStable(filas, func(i, j int) bool {
		a, b := filas[i], filas[j]
		if a.SubDiario != b.SubDiario {
			return a.SubDiario < b.SubDiario
		}
		if a.NumComprobante != b.NumComprobante {
			return a.NumComprobante < b.NumComprobante
		}
		if a.DebeHaber != b.DebeHaber {
			return a.DebeHaber < b.DebeHaber
		}
		return a.Importe > b.Importe
	})
}

// recortarGlosa hard-truncates the description to 40 characters, counting
// runes rather than bytes.
func recortarGlosa(s string) string {
	r := []rune(s)
	if len(r) <= maxGlosa {
		return s
	}
	return string(r[:maxGlosa])
}
