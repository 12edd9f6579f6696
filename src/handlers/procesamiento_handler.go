// backend/src/handlers/procesamiento_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/ventascontables/backend/src/config"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/models"
	"github.com/username/ventascontables/backend/src/processors"
	"github.com/username/ventascontables/backend/src/security/validation"
	"github.com/username/ventascontables/backend/src/services"
	"github.com/username/ventascontables/backend/src/utils"
)

type ProcesamientoHandler struct {
	uploadService services.UploadService
}

func NewProcesamientoHandler(service services.UploadService) *ProcesamientoHandler {
	return &ProcesamientoHandler{uploadService: service}
}

// HandleProcesar receives a sales export plus the numbering parameters
// and responds with the generated workbook name and the warnings the
// user should see (missing codes, skipped rows).
func (h *ProcesamientoHandler) HandleProcesar(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	procesadoPor, _ := GetUserEmailFromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, "falló la lectura del formulario o el archivo es demasiado grande", http.StatusBadRequest)
		return
	}

	params, err := leerParametros(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("archivo")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "falta el archivo de ventas ('archivo')", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, "archivo demasiado grande", http.StatusBadRequest)
		return
	}

	if contentType := fileHeader.Header.Get("Content-Type"); contentType != "" {
		if err := validation.ValidateClientContentType(contentType); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	kind, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		ctxLogger.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctxLogger.Info("Processing sales file", "filename", fileHeader.Filename, "kind", kind, "mes", params.Mes)

	resultado, err := h.uploadService.ProcesarArchivo(file, fileHeader.Filename, params, procesadoPor)
	if err != nil {
		switch {
		case errors.Is(err, processors.ErrParametrosInvalidos):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrArchivoIlegible), errors.Is(err, services.ErrSinAsientos):
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			ctxLogger.Error("Processing failed", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "error interno al procesar el archivo", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, resultado, http.StatusOK)
}

// HandleDescargar streams a previously generated Concar workbook.
func (h *ProcesamientoHandler) HandleDescargar(w http.ResponseWriter, r *http.Request) {
	archivo := chi.URLParam(r, "archivo")
	ruta, err := h.uploadService.RutaSalida(archivo)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+archivo+"\"")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, ruta)
}

func leerParametros(r *http.Request) (models.Parametros, error) {
	mes := r.FormValue("mes")
	subdiario, errSub := strconv.Atoi(r.FormValue("subdiario_inicial"))
	comprobante, errNum := strconv.Atoi(r.FormValue("numero_comprobante_inicial"))

	params := models.Parametros{
		Mes:                   mes,
		SubdiarioInicial:      subdiario,
		NumComprobanteInicial: comprobante,
	}
	if errSub != nil || errNum != nil {
		return params, errors.New("subdiario_inicial y numero_comprobante_inicial deben ser enteros")
	}
	return params, processors.ValidarParametros(params)
}
