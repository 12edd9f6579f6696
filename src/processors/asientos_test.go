// backend/src/processors/asientos_test.go
package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ventascontables/backend/src/models"
)

func fechaVenta(dia, mes, anio int) models.FechaVenta {
	return models.FechaVenta{
		Time:  time.Date(anio, time.Month(mes), dia, 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

func boletaActiva(numero, serie string, total float64, items ...models.ItemVenta) models.Boleta {
	return models.Boleta{
		Fecha:   fechaVenta(15, 7, 2024),
		DNIRUC:  "45678901",
		Cliente: "Juan Pérez",
		Numero:  numero,
		Serie:   serie,
		Total:   total,
		Estado:  models.EstadoActiva,
		Items:   items,
	}
}

var cuentasPrueba = map[string]string{
	"Cafe Americano": "701101",
	"Sandwich Mixto": "701103",
	"701112":         "701112",
}

func TestValidarParametros(t *testing.T) {
	cases := []struct {
		nombre string
		params models.Parametros
		valido bool
	}{
		{"válido", models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 1}, true},
		{"mes de un dígito", models.Parametros{Mes: "7", SubdiarioInicial: 5, NumComprobanteInicial: 1}, false},
		{"mes no numérico", models.Parametros{Mes: "ju", SubdiarioInicial: 5, NumComprobanteInicial: 1}, false},
		{"subdiario cero", models.Parametros{Mes: "07", SubdiarioInicial: 0, NumComprobanteInicial: 1}, false},
		{"comprobante cero", models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 0}, false},
		{"comprobante sobre el tope", models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 10000}, false},
		{"comprobante en el tope", models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 9999}, true},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			err := ValidarParametros(tc.params)
			if tc.valido {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrParametrosInvalidos)
			}
		})
	}
}

func TestConstruirNumeracion(t *testing.T) {
	boletas := []models.Boleta{
		boletaActiva("0001B001", "11111", 7, models.ItemVenta{Producto: "Cafe Americano", Cantidad: 1}),
	}
	params := models.Parametros{Mes: "01", SubdiarioInicial: 5, NumComprobanteInicial: 1}

	lineas, faltantes, err := NewAsientoBuilder().Construir(boletas, cuentasPrueba, params)
	require.NoError(t, err)
	assert.Empty(t, faltantes)
	require.Len(t, lineas, 2)

	assert.Equal(t, "010001", lineas[0].NumComprobante)
	assert.Equal(t, "05", lineas[0].SubDiario)
}

func TestConstruirRollover(t *testing.T) {
	var boletas []models.Boleta
	for n := 0; n < 5; n++ {
		boletas = append(boletas, boletaActiva("0001B001", "11111", 7))
	}
	params := models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 9998}

	lineas, _, err := NewAsientoBuilder().Construir(boletas, cuentasPrueba, params)
	require.NoError(t, err)
	require.Len(t, lineas, 5)

	quiere := []struct{ sub, num string }{
		{"05", "079998"},
		{"05", "079999"},
		{"06", "070001"},
		{"06", "070002"},
		{"06", "070003"},
	}
	for i, q := range quiere {
		assert.Equal(t, q.sub, lineas[i].SubDiario, "línea %d", i)
		assert.Equal(t, q.num, lineas[i].NumComprobante, "línea %d", i)
	}
}

func TestConstruirLineaControl(t *testing.T) {
	boletas := []models.Boleta{
		boletaActiva("0001B001", "12345", 18.5,
			models.ItemVenta{Producto: "Cafe Americano", Cantidad: 2},
			models.ItemVenta{Producto: "Sandwich Mixto", Cantidad: 1},
		),
	}
	params := models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 1}

	lineas, faltantes, err := NewAsientoBuilder().Construir(boletas, cuentasPrueba, params)
	require.NoError(t, err)
	assert.Empty(t, faltantes)
	require.Len(t, lineas, 3)

	control := lineas[0]
	assert.Equal(t, models.CuentaClientes, control.Cuenta)
	assert.Equal(t, "45678901", control.Anexo)
	assert.Equal(t, "Juan Pérez", control.Glosa)
	assert.Equal(t, "D", control.DebeHaber)
	assert.InDelta(t, 18.5, control.Importe, 1e-9)
	assert.Equal(t, models.TipoDocBoleta, control.TipoDoc)
	assert.Equal(t, "B001-12345", control.NrDoc)
	assert.Equal(t, models.MonedaNacional, control.CodigoMoneda)

	cafe := lineas[1]
	assert.Equal(t, "701101", cafe.Cuenta)
	assert.Equal(t, "H", cafe.DebeHaber)
	assert.InDelta(t, 2, cafe.Importe, 1e-9)
	assert.Equal(t, "", cafe.Anexo)
}

func TestConstruirAnexoClienteGenerico(t *testing.T) {
	b := boletaActiva("0001B001", "12345", 5)
	b.DNIRUC = models.DNIRUCGenerico
	params := models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 1}

	lineas, _, err := NewAsientoBuilder().Construir([]models.Boleta{b}, cuentasPrueba, params)
	require.NoError(t, err)
	require.Len(t, lineas, 1)
	assert.Equal(t, models.AnexoClienteVarios, lineas[0].Anexo)
}

func TestConstruirBoletaAnulada(t *testing.T) {
	b := boletaActiva("0001B001", "12345", 18.5,
		models.ItemVenta{Producto: "Cafe Americano", Cantidad: 2},
	)
	b.Estado = models.EstadoAnulada
	params := models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 1}

	lineas, faltantes, err := NewAsientoBuilder().Construir([]models.Boleta{b}, cuentasPrueba, params)
	require.NoError(t, err)
	assert.Empty(t, faltantes)
	require.Len(t, lineas, 1, "a voided receipt emits only its control line")

	l := lineas[0]
	assert.Equal(t, models.GlosaAnulado, l.Glosa)
	assert.Equal(t, models.AnexoAnulado, l.Anexo)
	assert.Equal(t, models.CuentaClientes, l.Cuenta)
	assert.Equal(t, "D", l.DebeHaber)
	assert.InDelta(t, 18.5, l.Importe, 1e-9)
}

func TestConstruirCodigosFaltantes(t *testing.T) {
	boletas := []models.Boleta{
		boletaActiva("0001B001", "11111", 10,
			models.ItemVenta{Producto: "Producto Nuevo", Cantidad: 1},
			models.ItemVenta{Producto: "Cafe Americano", Cantidad: 1},
		),
		boletaActiva("0002B001", "22222", 10,
			models.ItemVenta{Producto: "Producto Nuevo", Cantidad: 2},
			models.ItemVenta{Producto: "Otro Sin Cuenta", Cantidad: 1},
		),
	}
	params := models.Parametros{Mes: "07", SubdiarioInicial: 5, NumComprobanteInicial: 1}

	lineas, faltantes, err := NewAsientoBuilder().Construir(boletas, cuentasPrueba, params)
	require.NoError(t, err)

	assert.Equal(t, []string{"Producto Nuevo", "Otro Sin Cuenta"}, faltantes,
		"first seen order, no duplicates")
	// Two control lines plus the single resolvable item.
	assert.Len(t, lineas, 3)
}

func TestTipoDocumento(t *testing.T) {
	cases := []struct {
		numero string
		want   string
	}{
		{"0001B001", models.TipoDocBoleta},
		{"0001F012", models.TipoDocFactura},
		{"0001X001", models.TipoDocNoReconocido},
		{"B001", models.TipoDocBoleta},
		{"", models.TipoDocNoReconocido},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tipoDocumento(tc.numero), tc.numero)
	}
}

func TestAnexoProducto(t *testing.T) {
	assert.Equal(t, "4018", anexoProducto("401891"))
	assert.Equal(t, "", anexoProducto("701112"))
	assert.Equal(t, "", anexoProducto("701101"), "accounts without override map to blank")
	assert.Equal(t, "", anexoProducto("no numérica"))
}
