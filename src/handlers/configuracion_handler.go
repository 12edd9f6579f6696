// backend/src/handlers/configuracion_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/ventascontables/backend/src/config"
	"github.com/username/ventascontables/backend/src/grid"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
	"github.com/username/ventascontables/backend/src/security/validation"
	"github.com/username/ventascontables/backend/src/services"
	"github.com/username/ventascontables/backend/src/utils"
)

// ConfiguracionHandler manages the two lookup dictionaries the converter
// depends on. Every write invalidates the snapshot cache.
type ConfiguracionHandler struct {
	db           *sql.DB
	diccionarios services.DiccionarioService
}

func NewConfiguracionHandler(db *sql.DB, diccionarios services.DiccionarioService) *ConfiguracionHandler {
	return &ConfiguracionHandler{db: db, diccionarios: diccionarios}
}

// --- Producto → Cuenta ---

func (h *ConfiguracionHandler) ListarProductos(w http.ResponseWriter, r *http.Request) {
	productos, err := model.ListarProductosCuentas(h.db)
	if err != nil {
		logger.FromContext(r.Context()).Error("Listing productos failed", "error", err)
		utils.SendJSONError(w, "no se pudo listar el diccionario de cuentas", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, productos, http.StatusOK)
}

type productoRequest struct {
	Producto       string `json:"producto"`
	CuentaContable string `json:"cuenta_contable"`
	Activo         *bool  `json:"activo,omitempty"`
}

func (h *ConfiguracionHandler) CrearProducto(w http.ResponseWriter, r *http.Request) {
	req, err := h.leerProducto(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	producto := model.ProductoCuenta{Producto: req.Producto, CuentaContable: req.CuentaContable}
	if err := producto.Crear(h.db); err != nil {
		logger.FromContext(r.Context()).Error("Creating producto failed", "producto", req.Producto, "error", err)
		utils.SendJSONError(w, "el producto ya existe", http.StatusConflict)
		return
	}
	h.diccionarios.Invalidar()
	utils.SendJSON(w, &producto, http.StatusCreated)
}

func (h *ConfiguracionHandler) ActualizarProducto(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := h.leerProducto(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	producto := model.ProductoCuenta{ID: id, Producto: req.Producto, CuentaContable: req.CuentaContable, Activo: true}
	if req.Activo != nil {
		producto.Activo = *req.Activo
	}
	if err := producto.Actualizar(h.db); err != nil {
		if errors.Is(err, model.ErrEntradaNoEncontrada) {
			utils.SendJSONError(w, "producto no encontrado", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "no se pudo actualizar el producto", http.StatusInternalServerError)
		return
	}
	h.diccionarios.Invalidar()
	utils.SendJSON(w, &producto, http.StatusOK)
}

func (h *ConfiguracionHandler) EliminarProducto(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.EliminarProductoCuenta(h.db, id); err != nil {
		if errors.Is(err, model.ErrEntradaNoEncontrada) {
			utils.SendJSONError(w, "producto no encontrado", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "no se pudo eliminar el producto", http.StatusInternalServerError)
		return
	}
	h.diccionarios.Invalidar()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConfiguracionHandler) leerProducto(r *http.Request) (productoRequest, error) {
	var req productoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.New("cuerpo de la petición inválido")
	}
	req.Producto = validation.SanitizeText(strings.TrimSpace(req.Producto))
	req.CuentaContable = strings.TrimSpace(req.CuentaContable)
	if err := validation.ValidarProducto(req.Producto); err != nil {
		return req, err
	}
	if err := validation.ValidarCuentaContable(req.CuentaContable); err != nil {
		return req, err
	}
	return req, nil
}

// ImportarProductos loads a two-column dictionary spreadsheet (producto,
// cuenta contable) and upserts every valid row, mirroring the old
// DiccionarioCuentas workbook workflow.
func (h *ConfiguracionHandler) ImportarProductos(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	g, filename, err := gridDesdeFormulario(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	importados, ignorados := 0, 0
	for fila := 0; fila < g.NumRows(); fila++ {
		producto := validation.SanitizeText(g.At(fila, 0).TrimmedText())
		cuenta := g.At(fila, 1).TrimmedText()
		if validation.ValidarProducto(producto) != nil || validation.ValidarCuentaContable(cuenta) != nil {
			ignorados++
			continue
		}
		if err := model.UpsertProductoCuenta(h.db, producto, cuenta); err != nil {
			ctxLogger.Error("Upsert producto failed during import", "producto", producto, "error", err)
			utils.SendJSONError(w, "error al importar el diccionario", http.StatusInternalServerError)
			return
		}
		importados++
	}

	h.diccionarios.Invalidar()
	ctxLogger.Info("Diccionario de cuentas importado", "archivo", filename, "importados", importados, "ignorados", ignorados)
	utils.SendJSON(w, map[string]int{"importados": importados, "ignorados": ignorados}, http.StatusOK)
}

// ImportarCombos loads a two-column combo spreadsheet (combo, salto)
// and upserts every valid row.
func (h *ConfiguracionHandler) ImportarCombos(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	g, filename, err := gridDesdeFormulario(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	importados, ignorados := 0, 0
	for fila := 0; fila < g.NumRows(); fila++ {
		combo := validation.SanitizeText(g.At(fila, 0).TrimmedText())
		salto, ok := g.At(fila, 1).TryNumber()
		if !ok || validation.ValidarProducto(combo) != nil || validation.ValidarSalto(int(salto)) != nil {
			ignorados++
			continue
		}
		if err := model.UpsertComboSalto(h.db, combo, int(salto)); err != nil {
			ctxLogger.Error("Upsert combo failed during import", "combo", combo, "error", err)
			utils.SendJSONError(w, "error al importar el diccionario de combos", http.StatusInternalServerError)
			return
		}
		importados++
	}

	h.diccionarios.Invalidar()
	ctxLogger.Info("Diccionario de combos importado", "archivo", filename, "importados", importados, "ignorados", ignorados)
	utils.SendJSON(w, map[string]int{"importados": importados, "ignorados": ignorados}, http.StatusOK)
}

// --- Combo → Salto ---

func (h *ConfiguracionHandler) ListarCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := model.ListarCombosSalto(h.db)
	if err != nil {
		logger.FromContext(r.Context()).Error("Listing combos failed", "error", err)
		utils.SendJSONError(w, "no se pudo listar el diccionario de combos", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, combos, http.StatusOK)
}

type comboRequest struct {
	Combo  string `json:"combo"`
	Salto  int    `json:"salto"`
	Activo *bool  `json:"activo,omitempty"`
}

func (h *ConfiguracionHandler) CrearCombo(w http.ResponseWriter, r *http.Request) {
	req, err := h.leerCombo(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	combo := model.ComboSalto{Combo: req.Combo, Salto: req.Salto}
	if err := combo.Crear(h.db); err != nil {
		logger.FromContext(r.Context()).Error("Creating combo failed", "combo", req.Combo, "error", err)
		utils.SendJSONError(w, "el combo ya existe", http.StatusConflict)
		return
	}
	h.diccionarios.Invalidar()
	utils.SendJSON(w, &combo, http.StatusCreated)
}

func (h *ConfiguracionHandler) ActualizarCombo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := h.leerCombo(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	combo := model.ComboSalto{ID: id, Combo: req.Combo, Salto: req.Salto, Activo: true}
	if req.Activo != nil {
		combo.Activo = *req.Activo
	}
	if err := combo.Actualizar(h.db); err != nil {
		if errors.Is(err, model.ErrEntradaNoEncontrada) {
			utils.SendJSONError(w, "combo no encontrado", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "no se pudo actualizar el combo", http.StatusInternalServerError)
		return
	}
	h.diccionarios.Invalidar()
	utils.SendJSON(w, &combo, http.StatusOK)
}

func (h *ConfiguracionHandler) EliminarCombo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := model.EliminarComboSalto(h.db, id); err != nil {
		if errors.Is(err, model.ErrEntradaNoEncontrada) {
			utils.SendJSONError(w, "combo no encontrado", http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, "no se pudo eliminar el combo", http.StatusInternalServerError)
		return
	}
	h.diccionarios.Invalidar()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConfiguracionHandler) leerCombo(r *http.Request) (comboRequest, error) {
	var req comboRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.New("cuerpo de la petición inválido")
	}
	req.Combo = validation.SanitizeText(strings.TrimSpace(req.Combo))
	if err := validation.ValidarProducto(req.Combo); err != nil {
		return req, err
	}
	if err := validation.ValidarSalto(req.Salto); err != nil {
		return req, err
	}
	return req, nil
}

// --- helpers ---

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("id inválido")
	}
	return id, nil
}

func gridDesdeFormulario(r *http.Request) (*grid.Grid, string, error) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		return nil, "", errors.New("falló la lectura del formulario o el archivo es demasiado grande")
	}
	file, fileHeader, err := r.FormFile("archivo")
	if err != nil {
		return nil, "", errors.New("falta el archivo ('archivo')")
	}
	defer file.Close()

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", errors.New("no se pudo leer el archivo")
	}
	g, err := grid.Decode(data, fileHeader.Filename)
	if err != nil {
		return nil, "", err
	}
	return g, fileHeader.Filename, nil
}
