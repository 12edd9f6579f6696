// backend/src/models/asiento.go
package models

// Fixed Concar field values for the sales journal. The currency is always
// local ("MN"); the conversion fields are a passthrough contract.
const (
	MonedaNacional     = "MN"
	TipoConversion     = "V"
	FlagConversion     = "S"
	CuentaClientes     = "101101"
	AnexoAnulado       = "0001"
	AnexoClienteVarios = "99999"
	GlosaAnulado       = "ANULADO"
)

// Document types derived from the receipt number.
const (
	TipoDocBoleta       = "BV"
	TipoDocFactura      = "FT"
	TipoDocNoReconocido = "NO RECONOCIDO"
)

// AsientoLinea is one raw double-entry ledger line, before grouping.
// Dates stay as FechaVenta until the formatter renders them.
type AsientoLinea struct {
	SubDiario       string
	NumComprobante  string
	Fecha           FechaVenta
	CodigoMoneda    string
	Glosa           string
	TipoCambio      float64
	TipoConversion  string
	FlagConversion  string
	FechaTipoCambio string
	Cuenta          string
	Anexo           string
	CentroCosto     string
	DebeHaber       string
	Importe         float64
	ImporteDolares  string
	ImporteSoles    string
	TipoDoc         string
	NrDoc           string
	FechaDoc        FechaVenta
	FechaVenc       FechaVenta
}

// FilaConcar is one aggregated, formatted row of the final ledger table,
// in the fixed 20-column Concar import order.
type FilaConcar struct {
	SubDiario       string  `json:"sub_diario"`
	NumComprobante  string  `json:"numero_comprobante"`
	Fecha           string  `json:"fecha"`
	CodigoMoneda    string  `json:"codigo_moneda"`
	Glosa           string  `json:"glosa_principal"`
	TipoCambio      float64 `json:"tipo_cambio"`
	TipoConversion  string  `json:"tipo_conversion"`
	FlagConversion  string  `json:"flag_conversion_moneda"`
	FechaTipoCambio string  `json:"fecha_tipo_cambio"`
	Cuenta          string  `json:"cuenta_contable"`
	Anexo           string  `json:"codigo_anexo"`
	CentroCosto     string  `json:"codigo_centro_costo"`
	DebeHaber       string  `json:"debe_haber"`
	Importe         float64 `json:"importe_original"`
	ImporteDolares  string  `json:"importe_dolares"`
	ImporteSoles    string  `json:"importe_soles"`
	TipoDoc         string  `json:"tipo_doc"`
	NrDoc           string  `json:"nr_doc"`
	FechaDoc        string  `json:"fecha_doc"`
	FechaVenc       string  `json:"fecha_venc"`
}

// EncabezadosConcar are the column headers of the exported ledger, in the
// exact order Concar imports them.
var EncabezadosConcar = []string{
	"Sub Diario", "Numero de Comprobante", "Fecha", "Código de Moneda",
	"Glosa Principal", "Tipo de Cambio", "Tipo de Conversión",
	"Flag de Conversión de Moneda", "Fecha de Tipo de Cambio",
	"CuentaContable", "CodigoAnexo", "CodigoCentroCosto", "DebeHaber",
	"ImporteOriginal", "ImporteDolares", "ImporteSoles", "TipoDoc",
	"Nr.Doc", "FechaDoc", "FechaVenc",
}

// Parametros are the caller-supplied numbering inputs for one run.
type Parametros struct {
	Mes                   string `json:"mes"`
	SubdiarioInicial      int    `json:"subdiario_inicial"`
	NumComprobanteInicial int    `json:"numero_comprobante_inicial"`
}

// Diagnostico records one unit (row or receipt) the scanner skipped while
// tolerating a malformed export. Surfaced to the caller, never fatal.
type Diagnostico struct {
	Fila   int    `json:"fila"`
	Motivo string `json:"motivo"`
}

// ResultadoProcesamiento is the outcome of one conversion run.
type ResultadoProcesamiento struct {
	Filas            []FilaConcar  `json:"filas"`
	CodigosFaltantes []string      `json:"codigos_faltantes"`
	Omitidos         []Diagnostico `json:"omitidos"`
	TotalBoletas     int           `json:"total_boletas"`
}
