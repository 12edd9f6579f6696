// backend/src/services/export_test.go
package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/ventascontables/backend/src/models"
)

func TestEscribirConcar(t *testing.T) {
	filas := []models.FilaConcar{
		{
			SubDiario:      "05",
			NumComprobante: "070001",
			Fecha:          "15/07/2024",
			CodigoMoneda:   "MN",
			Glosa:          "Juan Pérez",
			TipoConversion: "V",
			FlagConversion: "S",
			Cuenta:         "101101",
			Anexo:          "45678901",
			DebeHaber:      "D",
			Importe:        18.5,
			TipoDoc:        "BV",
			NrDoc:          "B001-12345",
			FechaDoc:       "15/07/2024",
			FechaVenc:      "15/07/2024",
		},
	}

	ruta := filepath.Join(t.TempDir(), "concar.xlsx")
	require.NoError(t, EscribirConcar(filas, ruta))

	f, err := excelize.OpenFile(ruta)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(hojaAsientos)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.EncabezadosConcar, rows[0][:len(models.EncabezadosConcar)])
	assert.Equal(t, "05", rows[1][0])
	assert.Equal(t, "070001", rows[1][1])
	assert.Equal(t, "101101", rows[1][9])
	assert.Equal(t, "D", rows[1][12])
	assert.Equal(t, "18.5", rows[1][13])
}

func TestEscribirConcarNeutralizaFormulas(t *testing.T) {
	filas := []models.FilaConcar{{Glosa: "=HYPERLINK(\"http://x\")", DebeHaber: "D"}}

	ruta := filepath.Join(t.TempDir(), "concar.xlsx")
	require.NoError(t, EscribirConcar(filas, ruta))

	f, err := excelize.OpenFile(ruta)
	require.NoError(t, err)
	defer f.Close()

	glosa, err := f.GetCellValue(hojaAsientos, "E2")
	require.NoError(t, err)
	assert.Equal(t, "'=HYPERLINK(\"http://x\")", glosa)
}
