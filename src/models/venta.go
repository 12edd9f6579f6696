// backend/src/models/venta.go
package models

import "time"

// Receipt states exactly as they appear in the POS sales export.
const (
	EstadoActiva  = "Activa"
	EstadoAnulada = "Anulada"
)

// Sentinel DNI/RUC used by the POS for walk-in customers.
const (
	DNIRUCGenerico  = "00000000"
	ClienteGenerico = "Clientes Varios"
)

// FechaVenta carries a date cell through the pipeline without committing
// to a parse. The raw text survives so an unparseable date can still be
// diagnosed, and formatting only happens at the very end.
type FechaVenta struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// Formato renders the date as DD/MM/YYYY, or blank when the source cell
// never parsed. A blank is deliberate; a silently wrong date is not.
func (f FechaVenta) Formato() string {
	if !f.Valid {
		return ""
	}
	return f.Time.Format("02/01/2006")
}

// ItemVenta is one product row inside a receipt's detail block, after the
// bag and combo rules have been applied.
type ItemVenta struct {
	Producto string  `json:"producto"`
	Cantidad float64 `json:"cantidad"`
}

// Boleta is one reconstructed sales receipt: the header fields read at
// fixed offsets plus the detail items that belong to it. Items are kept
// in document order.
type Boleta struct {
	Fecha   FechaVenta  `json:"fecha"`
	DNIRUC  string      `json:"dniruc"`
	Cliente string      `json:"cliente"`
	Numero  string      `json:"numero"`
	Serie   string      `json:"serie"`
	Total   float64     `json:"total"`
	Estado  string      `json:"estado"`
	Items   []ItemVenta `json:"items"`
}

// Anulada reports whether the receipt was voided at the POS.
func (b *Boleta) Anulada() bool { return b.Estado == EstadoAnulada }
