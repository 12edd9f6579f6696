// backend/src/handlers/historial_handler.go
package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
	"github.com/username/ventascontables/backend/src/utils"
)

type HistorialHandler struct {
	db *sql.DB
}

func NewHistorialHandler(db *sql.DB) *HistorialHandler {
	return &HistorialHandler{db: db}
}

func (h *HistorialHandler) Listar(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	historial, err := model.ListarHistorial(h.db, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Listing historial failed", "error", err)
		utils.SendJSONError(w, "no se pudo listar el historial", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, historial, http.StatusOK)
}

func (h *HistorialHandler) Obtener(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "id inválido", http.StatusBadRequest)
		return
	}

	registro, err := model.GetHistorialByID(h.db, id)
	if err != nil {
		if errors.Is(err, model.ErrHistorialNoEncontrado) {
			utils.SendJSONError(w, "registro no encontrado", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Fetching historial failed", "id", id, "error", err)
		utils.SendJSONError(w, "no se pudo obtener el registro", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, registro, http.StatusOK)
}
