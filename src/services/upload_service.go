// backend/src/services/upload_service.go
package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/username/ventascontables/backend/src/grid"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
	"github.com/username/ventascontables/backend/src/models"
)

type uploadServiceImpl struct {
	db            *sql.DB
	diccionarios  DiccionarioService
	procesamiento *ProcesamientoService
	uploadDir     string
}

func NewUploadService(db *sql.DB, diccionarios DiccionarioService, procesamiento *ProcesamientoService, uploadDir string) UploadService {
	return &uploadServiceImpl{
		db:            db,
		diccionarios:  diccionarios,
		procesamiento: procesamiento,
		uploadDir:     uploadDir,
	}
}

// ProcesarArchivo runs one sales file end to end: decode the spreadsheet
// into a grid, snapshot the dictionaries, run the conversion pipeline,
// write the Concar workbook and record the run in the history log. The
// run is recorded even when it fails, with estado "error".
func (s *uploadServiceImpl) ProcesarArchivo(fileReader io.Reader, filename string, params models.Parametros, procesadoPor string) (*ResultadoArchivo, error) {
	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("leyendo archivo subido: %w", err)
	}

	g, err := grid.Decode(data, filename)
	if err != nil {
		s.registrarError(filename, params, procesadoPor, err)
		return nil, fmt.Errorf("%w: %v", ErrArchivoIlegible, err)
	}

	cuentas, err := s.diccionarios.Cuentas()
	if err != nil {
		return nil, fmt.Errorf("cargando diccionario de cuentas: %w", err)
	}
	combos, err := s.diccionarios.Combos()
	if err != nil {
		return nil, fmt.Errorf("cargando diccionario de combos: %w", err)
	}

	resultado, err := s.procesamiento.Procesar(g, cuentas, combos, params)
	if err != nil {
		s.registrarError(filename, params, procesadoPor, err)
		return nil, err
	}
	if resultado.TotalBoletas == 0 {
		s.registrarError(filename, params, procesadoPor, ErrSinAsientos)
		return nil, ErrSinAsientos
	}

	salida := fmt.Sprintf("concar_%s_%s.xlsx", params.Mes, uuid.New().String()[:8])
	if err := EscribirConcar(resultado.Filas, filepath.Join(s.uploadDir, salida)); err != nil {
		s.registrarError(filename, params, procesadoPor, err)
		return nil, fmt.Errorf("escribiendo archivo de salida: %w", err)
	}

	faltantesJSON, _ := json.Marshal(resultado.CodigosFaltantes)
	historial := model.ProcesamientoHistorial{
		NombreArchivo:      filename,
		Mes:                params.Mes,
		SubdiarioInicial:   params.SubdiarioInicial,
		ComprobanteInicial: params.NumComprobanteInicial,
		TotalBoletas:       resultado.TotalBoletas,
		TotalAsientos:      len(resultado.Filas),
		CodigosFaltantes:   string(faltantesJSON),
		ArchivoSalida:      salida,
		Estado:             model.EstadoCompletado,
		ProcesadoPor:       procesadoPor,
	}
	if err := historial.Crear(s.db); err != nil {
		logger.L.Error("No se pudo registrar el historial de procesamiento", "archivo", filename, "error", err)
	}

	logger.L.Info("Archivo de ventas procesado",
		"archivo", filename,
		"boletas", resultado.TotalBoletas,
		"asientos", len(resultado.Filas),
		"codigosFaltantes", len(resultado.CodigosFaltantes),
		"omitidos", len(resultado.Omitidos))

	return &ResultadoArchivo{
		ArchivoSalida:    salida,
		TotalBoletas:     resultado.TotalBoletas,
		TotalAsientos:    len(resultado.Filas),
		CodigosFaltantes: resultado.CodigosFaltantes,
		Omitidos:         resultado.Omitidos,
		HistorialID:      historial.ID,
	}, nil
}

// RutaSalida resolves a generated file name to its path under the upload
// directory, refusing anything that tries to climb out of it.
func (s *uploadServiceImpl) RutaSalida(archivo string) (string, error) {
	if archivo == "" || strings.ContainsAny(archivo, `/\`) || strings.Contains(archivo, "..") {
		return "", fmt.Errorf("nombre de archivo inválido: %q", archivo)
	}
	ruta := filepath.Join(s.uploadDir, archivo)
	if _, err := os.Stat(ruta); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("archivo %q no encontrado", archivo)
		}
		return "", err
	}
	return ruta, nil
}

func (s *uploadServiceImpl) registrarError(filename string, params models.Parametros, procesadoPor string, causa error) {
	historial := model.ProcesamientoHistorial{
		NombreArchivo:      filename,
		Mes:                params.Mes,
		SubdiarioInicial:   params.SubdiarioInicial,
		ComprobanteInicial: params.NumComprobanteInicial,
		CodigosFaltantes:   "[]",
		Estado:             model.EstadoError,
		MensajeError:       causa.Error(),
		ProcesadoPor:       procesadoPor,
	}
	if err := historial.Crear(s.db); err != nil {
		logger.L.Error("No se pudo registrar el historial de error", "archivo", filename, "error", err)
	}
}
