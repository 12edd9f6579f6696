// backend/src/model/historial.go
package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrHistorialNoEncontrado = errors.New("registro de historial no encontrado")

// Run outcomes recorded in the history log.
const (
	EstadoCompletado = "completado"
	EstadoError      = "error"
)

// ProcesamientoHistorial is one processing run as recorded for audit:
// the input file, the numbering parameters, the counters and the missing
// codes the user was warned about.
type ProcesamientoHistorial struct {
	ID                int64     `json:"id"`
	NombreArchivo     string    `json:"nombre_archivo"`
	Mes               string    `json:"mes"`
	SubdiarioInicial  int       `json:"subdiario_inicial"`
	ComprobanteInicial int      `json:"numero_comprobante_inicial"`
	TotalBoletas      int       `json:"total_registros_procesados"`
	TotalAsientos     int       `json:"total_asientos_generados"`
	CodigosFaltantes  string    `json:"codigos_faltantes"` // JSON array
	ArchivoSalida     string    `json:"archivo_salida"`
	Estado            string    `json:"estado"`
	MensajeError      string    `json:"mensaje_error,omitempty"`
	ProcesadoPor      string    `json:"procesado_por"`
	CreatedAt         time.Time `json:"created_at"`
}

func (h *ProcesamientoHistorial) Crear(db *sql.DB) error {
	h.CreatedAt = time.Now()
	if h.Estado == "" {
		h.Estado = EstadoCompletado
	}

	res, err := db.Exec(`
	INSERT INTO procesamiento_historial
	(nombre_archivo, mes, subdiario_inicial, numero_comprobante_inicial,
	 total_registros_procesados, total_asientos_generados, codigos_faltantes,
	 archivo_salida, estado, mensaje_error, procesado_por, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.NombreArchivo, h.Mes, h.SubdiarioInicial, h.ComprobanteInicial,
		h.TotalBoletas, h.TotalAsientos, h.CodigosFaltantes,
		h.ArchivoSalida, h.Estado, h.MensajeError, h.ProcesadoPor, h.CreatedAt)
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func ListarHistorial(db *sql.DB, limit int) ([]ProcesamientoHistorial, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
	SELECT id, nombre_archivo, mes, subdiario_inicial, numero_comprobante_inicial,
	       total_registros_procesados, total_asientos_generados, codigos_faltantes,
	       archivo_salida, estado, mensaje_error, procesado_por, created_at
	FROM procesamiento_historial ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProcesamientoHistorial
	for rows.Next() {
		var h ProcesamientoHistorial
		if err := rows.Scan(&h.ID, &h.NombreArchivo, &h.Mes, &h.SubdiarioInicial,
			&h.ComprobanteInicial, &h.TotalBoletas, &h.TotalAsientos,
			&h.CodigosFaltantes, &h.ArchivoSalida, &h.Estado, &h.MensajeError,
			&h.ProcesadoPor, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func GetHistorialByID(db *sql.DB, id int64) (*ProcesamientoHistorial, error) {
	var h ProcesamientoHistorial
	err := db.QueryRow(`
	SELECT id, nombre_archivo, mes, subdiario_inicial, numero_comprobante_inicial,
	       total_registros_procesados, total_asientos_generados, codigos_faltantes,
	       archivo_salida, estado, mensaje_error, procesado_por, created_at
	FROM procesamiento_historial WHERE id = ?`, id).
		Scan(&h.ID, &h.NombreArchivo, &h.Mes, &h.SubdiarioInicial,
			&h.ComprobanteInicial, &h.TotalBoletas, &h.TotalAsientos,
			&h.CodigosFaltantes, &h.ArchivoSalida, &h.Estado, &h.MensajeError,
			&h.ProcesadoPor, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHistorialNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}
