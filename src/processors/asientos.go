// backend/src/processors/asientos.go
package processors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/username/ventascontables/backend/src/models"
)

// ErrParametrosInvalidos marks numbering parameters outside the ranges
// Concar accepts. It is the only error this component raises; data
// quality problems are absorbed per receipt or per item.
var ErrParametrosInvalidos = errors.New("parámetros de numeración inválidos")

// Highest voucher sequence within one subdiario; the next receipt rolls
// over to a fresh subdiario.
const maxComprobante = 9999

// Auxiliary anexo override per account, keyed by the numeric form of the
// account code. Only these four accounts carry an override; every other
// account maps to an empty anexo on product lines.
var anexoPorCuenta = map[int]string{
	701112: "",
	401891: "4018",
	701211: "",
	702211: "",
}

// ValidarParametros rejects a run before any ledger line is produced.
func ValidarParametros(p models.Parametros) error {
	if len(p.Mes) != 2 {
		return fmt.Errorf("%w: mes %q debe tener 2 dígitos", ErrParametrosInvalidos, p.Mes)
	}
	if _, err := strconv.Atoi(p.Mes); err != nil {
		return fmt.Errorf("%w: mes %q no es numérico", ErrParametrosInvalidos, p.Mes)
	}
	if p.SubdiarioInicial < 1 {
		return fmt.Errorf("%w: subdiario inicial %d debe ser >= 1", ErrParametrosInvalidos, p.SubdiarioInicial)
	}
	if p.NumComprobanteInicial < 1 || p.NumComprobanteInicial > maxComprobante {
		return fmt.Errorf("%w: número de comprobante inicial %d fuera de [1, %d]", ErrParametrosInvalidos, p.NumComprobanteInicial, maxComprobante)
	}
	return nil
}

// AsientoBuilder turns extracted receipts into raw ledger lines. It keeps
// no state between calls; the missing-code accumulator is created fresh
// per run and returned to the caller.
type AsientoBuilder struct{}

func NewAsientoBuilder() *AsientoBuilder { return &AsientoBuilder{} }

// Construir emits the ledger lines for each receipt in extraction order:
// one debit control line, then one credit line per resolvable product.
// A voided receipt produces only its control line. Product codes absent
// from the account dictionary land in the missing-code list and emit
// nothing; they never abort the receipt.
func (b *AsientoBuilder) Construir(boletas []models.Boleta, cuentas map[string]string, params models.Parametros) ([]models.AsientoLinea, []string, error) {
	if err := ValidarParametros(params); err != nil {
		return nil, nil, err
	}

	var (
		lineas      []models.AsientoLinea
		faltantes   []string
		yaFaltantes = make(map[string]bool)
	)

	comprobante := params.NumComprobanteInicial - 1
	subdiario := params.SubdiarioInicial

	for _, boleta := range boletas {
		comprobante++
		if comprobante > maxComprobante {
			subdiario++
			comprobante = 1
		}

		numComprobante := params.Mes + fmt.Sprintf("%04d", comprobante)
		subDiarioStr := fmt.Sprintf("%02d", subdiario)
		tipoDoc := tipoDocumento(boleta.Numero)
		nrDoc := ultimos4(boleta.Numero) + "-" + boleta.Serie

		base := models.AsientoLinea{
			SubDiario:      subDiarioStr,
			NumComprobante: numComprobante,
			Fecha:          boleta.Fecha,
			CodigoMoneda:   models.MonedaNacional,
			TipoConversion: models.TipoConversion,
			FlagConversion: models.FlagConversion,
			TipoDoc:        tipoDoc,
			NrDoc:          nrDoc,
			FechaDoc:       boleta.Fecha,
			FechaVenc:      boleta.Fecha,
		}

		if boleta.Anulada() {
			linea := base
			linea.Glosa = models.GlosaAnulado
			linea.Cuenta = models.CuentaClientes
			linea.Anexo = models.AnexoAnulado
			linea.DebeHaber = "D"
			linea.Importe = boleta.Total
			lineas = append(lineas, linea)
			continue
		}

		control := base
		control.Glosa = boleta.Cliente
		control.Cuenta = models.CuentaClientes
		control.Anexo = anexoCliente(boleta.DNIRUC)
		control.DebeHaber = "D"
		control.Importe = boleta.Total
		lineas = append(lineas, control)

		for _, item := range boleta.Items {
			cuenta, ok := cuentas[item.Producto]
			if !ok {
				if !yaFaltantes[item.Producto] {
					yaFaltantes[item.Producto] = true
					faltantes = append(faltantes, item.Producto)
				}
				continue
			}
			linea := base
			linea.Glosa = boleta.Cliente
			linea.Cuenta = cuenta
			linea.Anexo = anexoProducto(cuenta)
			linea.DebeHaber = "H"
			linea.Importe = item.Cantidad
			lineas = append(lineas, linea)
		}
	}

	return lineas, faltantes, nil
}

// tipoDocumento derives the Concar document type from the last four
// characters of the receipt number.
func tipoDocumento(numero string) string {
	serie := ultimos4(numero)
	if serie == "" {
		return models.TipoDocNoReconocido
	}
	switch serie[0] {
	case 'B', 'b':
		return models.TipoDocBoleta
	case 'F', 'f':
		return models.TipoDocFactura
	default:
		return models.TipoDocNoReconocido
	}
}

func ultimos4(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}

func anexoCliente(dniruc string) string {
	if strings.TrimSpace(dniruc) == models.DNIRUCGenerico {
		return models.AnexoClienteVarios
	}
	return dniruc
}

func anexoProducto(cuenta string) string {
	n, err := strconv.Atoi(strings.TrimSpace(cuenta))
	if err != nil {
		return ""
	}
	return anexoPorCuenta[n]
}
