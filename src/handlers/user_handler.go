// backend/src/handlers/user_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
	"github.com/username/ventascontables/backend/src/security"
	"github.com/username/ventascontables/backend/src/security/validation"
	"github.com/username/ventascontables/backend/src/utils"
)

const minPasswordLength = 8

type UserHandler struct {
	db          *sql.DB
	authService *security.AuthService
}

func NewUserHandler(db *sql.DB, authService *security.AuthService) *UserHandler {
	return &UserHandler{db: db, authService: authService}
}

func (h *UserHandler) getUsuario(id int64) (*model.Usuario, error) {
	return model.GetUsuarioByID(h.db, id)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	Usuario     *model.Usuario `json:"usuario"`
}

// LoginUserHandler issues an access token for valid credentials.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	usuario, err := model.GetUsuarioByEmail(h.db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, model.ErrUsuarioNoEncontrado) {
			ctxLogger.Error("Login: user lookup failed", "error", err)
		}
		utils.SendJSONError(w, "credenciales inválidas", http.StatusUnauthorized)
		return
	}
	if !usuario.Activo || usuario.CheckPassword(req.Password) != nil {
		ctxLogger.Warn("Login: invalid credentials", "email", req.Email)
		utils.SendJSONError(w, "credenciales inválidas", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(fmt.Sprintf("%d", usuario.ID))
	if err != nil {
		ctxLogger.Error("Login: token generation failed", "userID", usuario.ID, "error", err)
		utils.SendJSONError(w, "no se pudo iniciar sesión", http.StatusInternalServerError)
		return
	}

	ctxLogger.Info("User logged in", "userID", usuario.ID)
	utils.SendJSON(w, loginResponse{AccessToken: token, Usuario: usuario}, http.StatusOK)
}

type registerRequest struct {
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Password string `json:"password"`
	EsAdmin  bool   `json:"es_admin"`
}

// RegisterUserHandler creates a back-office account. Admin only.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		utils.SendJSONError(w, "email inválido", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(req.Nombre, "nombre"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLength {
		utils.SendJSONError(w, fmt.Sprintf("la contraseña debe tener al menos %d caracteres", minPasswordLength), http.StatusBadRequest)
		return
	}

	usuario := model.Usuario{
		Email:   email,
		Nombre:  validation.SanitizeText(strings.TrimSpace(req.Nombre)),
		EsAdmin: req.EsAdmin,
	}
	if err := usuario.HashPassword(req.Password); err != nil {
		ctxLogger.Error("Register: hashing failed", "error", err)
		utils.SendJSONError(w, "no se pudo crear el usuario", http.StatusInternalServerError)
		return
	}
	if err := usuario.Crear(h.db); err != nil {
		ctxLogger.Error("Register: insert failed", "email", email, "error", err)
		utils.SendJSONError(w, "el email ya está registrado", http.StatusConflict)
		return
	}

	ctxLogger.Info("User registered", "userID", usuario.ID, "email", email)
	utils.SendJSON(w, &usuario, http.StatusCreated)
}

// MeHandler returns the authenticated account.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	usuario, err := h.getUsuario(userID)
	if err != nil {
		utils.SendJSONError(w, "usuario no encontrado", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, usuario, http.StatusOK)
}
