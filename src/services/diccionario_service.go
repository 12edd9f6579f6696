// backend/src/services/diccionario_service.go
package services

import (
	"database/sql"

	"github.com/patrickmn/go-cache"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
)

const (
	ckCuentas = "dic_cuentas"
	ckCombos  = "dic_combos"
)

type diccionarioServiceImpl struct {
	db    *sql.DB
	cache *cache.Cache
}

// NewDiccionarioService serves dictionary snapshots out of a small cache
// so repeated uploads do not hit SQLite for the same unchanged mappings.
// Configuration writes call Invalidar.
func NewDiccionarioService(db *sql.DB, c *cache.Cache) DiccionarioService {
	return &diccionarioServiceImpl{db: db, cache: c}
}

func (s *diccionarioServiceImpl) Cuentas() (map[string]string, error) {
	if cached, found := s.cache.Get(ckCuentas); found {
		return cached.(map[string]string), nil
	}
	cuentas, err := model.CuentasSnapshot(s.db)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ckCuentas, cuentas, cache.DefaultExpiration)
	logger.L.Debug("Diccionario de cuentas cargado", "entradas", len(cuentas))
	return cuentas, nil
}

func (s *diccionarioServiceImpl) Combos() (map[string]int, error) {
	if cached, found := s.cache.Get(ckCombos); found {
		return cached.(map[string]int), nil
	}
	combos, err := model.CombosSnapshot(s.db)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ckCombos, combos, cache.DefaultExpiration)
	logger.L.Debug("Diccionario de combos cargado", "entradas", len(combos))
	return combos, nil
}

func (s *diccionarioServiceImpl) Invalidar() {
	s.cache.Delete(ckCuentas)
	s.cache.Delete(ckCombos)
}
