// backend/src/services/export.go
package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"github.com/username/ventascontables/backend/src/models"
	"github.com/username/ventascontables/backend/src/security/validation"
)

const hojaAsientos = "Asientos"

// EscribirConcar writes the finalized ledger table as an .xlsx workbook
// Concar can import. Text cells pass through the formula-injection guard
// because the file is opened in Excel by the accounting staff.
func EscribirConcar(filas []models.FilaConcar, ruta string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), hojaAsientos)

	header := make([]interface{}, len(models.EncabezadosConcar))
	for i, h := range models.EncabezadosConcar {
		header[i] = h
	}
	if err := setFila(f, 1, header); err != nil {
		return err
	}

	for i, fila := range filas {
		if err := setFila(f, i+2, valoresFila(fila)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(ruta); err != nil {
		return fmt.Errorf("guardando %s: %w", ruta, err)
	}
	return nil
}

func setFila(f *excelize.File, fila int, valores []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, fila)
	if err != nil {
		return err
	}
	return f.SetSheetRow(hojaAsientos, cell, &valores)
}

// valoresFila flattens one ledger row into the fixed 20-column order.
func valoresFila(r models.FilaConcar) []interface{} {
	texto := func(s string) interface{} {
		return validation.SanitizeForFormulaInjection(s)
	}
	return []interface{}{
		texto(r.SubDiario), texto(r.NumComprobante), texto(r.Fecha),
		texto(r.CodigoMoneda), texto(r.Glosa), r.TipoCambio,
		texto(r.TipoConversion), texto(r.FlagConversion), texto(r.FechaTipoCambio),
		texto(r.Cuenta), texto(r.Anexo), texto(r.CentroCosto),
		texto(r.DebeHaber), r.Importe, texto(r.ImporteDolares),
		texto(r.ImporteSoles), texto(r.TipoDoc), texto(r.NrDoc),
		texto(r.FechaDoc), texto(r.FechaVenc),
	}
}
