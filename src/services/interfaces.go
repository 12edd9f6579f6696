// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/ventascontables/backend/src/models"
)

const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// Common service errors.
var (
	ErrArchivoIlegible = errors.New("el archivo de ventas no se pudo decodificar")
	ErrSinAsientos     = errors.New("el archivo no contiene boletas procesables")
)

// ResultadoArchivo is the outcome of processing one uploaded sales file.
// It carries the warnings the UI surfaces (missing codes, skipped rows)
// alongside the name of the generated Concar workbook.
type ResultadoArchivo struct {
	ArchivoSalida    string               `json:"archivo_salida"`
	TotalBoletas     int                  `json:"total_registros_procesados"`
	TotalAsientos    int                  `json:"total_asientos_generados"`
	CodigosFaltantes []string             `json:"codigos_faltantes"`
	Omitidos         []models.Diagnostico `json:"omitidos"`
	HistorialID      int64                `json:"historial_id"`
}

// UploadService is the orchestration boundary the handlers talk to.
type UploadService interface {
	ProcesarArchivo(fileReader io.Reader, filename string, params models.Parametros, procesadoPor string) (*ResultadoArchivo, error)
	RutaSalida(archivo string) (string, error)
}

// DiccionarioService provides read-only snapshots of the two lookup
// dictionaries for the duration of one conversion call.
type DiccionarioService interface {
	Cuentas() (map[string]string, error)
	Combos() (map[string]int, error)
	Invalidar()
}
