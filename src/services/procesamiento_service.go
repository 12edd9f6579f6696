// backend/src/services/procesamiento_service.go
package services

import (
	"github.com/username/ventascontables/backend/src/grid"
	"github.com/username/ventascontables/backend/src/models"
	"github.com/username/ventascontables/backend/src/parsers/ventas"
	"github.com/username/ventascontables/backend/src/processors"
)

// ProcesamientoService runs the extract → build → finalize pipeline over
// one decoded sales grid. It holds no state between calls: dictionaries
// are read-only snapshots passed in, and the missing-code accumulator is
// part of the result. Concurrent runs with independent inputs are safe.
type ProcesamientoService struct {
	builder   *processors.AsientoBuilder
	formatter *processors.ConcarFormatter
}

func NewProcesamientoService() *ProcesamientoService {
	return &ProcesamientoService{
		builder:   processors.NewAsientoBuilder(),
		formatter: processors.NewConcarFormatter(),
	}
}

// Procesar converts a sales grid into the Concar ledger table. The only
// errors that cross this boundary are invalid numbering parameters; a
// messy export degrades into skipped-unit diagnostics and missing codes.
func (s *ProcesamientoService) Procesar(g *grid.Grid, cuentas map[string]string, combos map[string]int, params models.Parametros) (*models.ResultadoProcesamiento, error) {
	if err := processors.ValidarParametros(params); err != nil {
		return nil, err
	}

	extractor := ventas.NewExtractor(combos)
	boletas, omitidos := extractor.Extraer(g)

	lineas, faltantes, err := s.builder.Construir(boletas, cuentas, params)
	if err != nil {
		return nil, err
	}

	return &models.ResultadoProcesamiento{
		Filas:            s.formatter.Finalizar(lineas),
		CodigosFaltantes: faltantes,
		Omitidos:         omitidos,
		TotalBoletas:     len(boletas),
	}, nil
}
