// backend/src/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/ventascontables/backend/src/config"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
	"github.com/username/ventascontables/backend/src/security"
	"github.com/username/ventascontables/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 50 << 20}
	os.Exit(m.Run())
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile("../../db/migrations/000001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

func crearUsuario(t *testing.T, db *sql.DB, email string, admin bool) *model.Usuario {
	t.Helper()
	u := &model.Usuario{Email: email, Nombre: "Prueba", EsAdmin: admin}
	require.NoError(t, u.HashPassword("contraseña-segura"))
	require.NoError(t, u.Crear(db))
	return u
}

func TestLoginYRutaProtegida(t *testing.T) {
	db := setupDB(t)
	auth := security.NewAuthService("clave-de-prueba-con-largo-suficiente-123", time.Hour)
	h := NewUserHandler(db, auth)
	crearUsuario(t, db, "admin@example.com", true)

	r := chi.NewRouter()
	r.Post("/api/auth/login", h.LoginUserHandler)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Get("/api/auth/me", h.MeHandler)
	})

	body, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "contraseña-segura",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string         `json:"access_token"`
		Usuario     *model.Usuario `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "admin@example.com", resp.Usuario.Email)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No token, no access.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	db := setupDB(t)
	auth := security.NewAuthService("clave-de-prueba-con-largo-suficiente-123", time.Hour)
	h := NewUserHandler(db, auth)
	crearUsuario(t, db, "admin@example.com", true)

	body, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": "equivocada",
	})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.LoginUserHandler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func newProcesamientoFixture(t *testing.T) (*ProcesamientoHandler, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	c := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	diccionarios := services.NewDiccionarioService(db, c)
	upload := services.NewUploadService(db, diccionarios, services.NewProcesamientoService(), t.TempDir())
	return NewProcesamientoHandler(upload), db
}

// archivoVentasHTML renders one minimal sales export the way the POS
// does: an HTML table served under an .xls name.
func archivoVentasHTML() []byte {
	cab := make([]string, 21)
	cab[0] = "15/07/2024"
	cab[5] = "Juan Pérez"
	cab[6] = "45678901"
	cab[8] = "0001B001"
	cab[9] = "12345"
	cab[17] = "14.00"
	cab[20] = "Activa"

	det := make([]string, 7)
	det[2] = "Cafe Americano"
	det[5] = "14.00"
	det[6] = "2"

	var sb strings.Builder
	sb.WriteString("<html><body><table>")
	for _, fila := range [][]string{cab, {"Detalle de venta"}, {}, det, {}} {
		sb.WriteString("<tr>")
		for _, celda := range fila {
			fmt.Fprintf(&sb, "<td>%s</td>", celda)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table></body></html>")
	return []byte(sb.String())
}

func multipartVentas(t *testing.T, mes, subdiario, comprobante string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("mes", mes))
	require.NoError(t, w.WriteField("subdiario_inicial", subdiario))
	require.NoError(t, w.WriteField("numero_comprobante_inicial", comprobante))
	part, err := w.CreateFormFile("archivo", "ventas_julio.xls")
	require.NoError(t, err)
	_, err = part.Write(archivoVentasHTML())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleProcesar(t *testing.T) {
	h, db := newProcesamientoFixture(t)
	require.NoError(t, model.UpsertProductoCuenta(db, "Cafe Americano", "701101"))

	body, contentType := multipartVentas(t, "07", "5", "1")
	req := httptest.NewRequest(http.MethodPost, "/procesar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleProcesar(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res services.ResultadoArchivo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.TotalBoletas)
	assert.Equal(t, 2, res.TotalAsientos)
	assert.True(t, strings.HasPrefix(res.ArchivoSalida, "concar_07_"))
}

func TestHandleProcesarParametrosInvalidos(t *testing.T) {
	h, _ := newProcesamientoFixture(t)

	body, contentType := multipartVentas(t, "7", "5", "1")
	req := httptest.NewRequest(http.MethodPost, "/procesar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleProcesar(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDescargarNoEncontrado(t *testing.T) {
	h, _ := newProcesamientoFixture(t)

	r := chi.NewRouter()
	r.Get("/descargar/{archivo}", h.HandleDescargar)

	req := httptest.NewRequest(http.MethodGet, "/descargar/no_existe.xlsx", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfiguracionProductos(t *testing.T) {
	db := setupDB(t)
	c := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	diccionarios := services.NewDiccionarioService(db, c)
	h := NewConfiguracionHandler(db, diccionarios)

	body, _ := json.Marshal(map[string]string{
		"producto":        "Cafe Americano",
		"cuenta_contable": "701101",
	})
	req := httptest.NewRequest(http.MethodPost, "/productos", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CrearProducto(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The snapshot cache must reflect the write immediately.
	cuentas, err := diccionarios.Cuentas()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Cafe Americano": "701101"}, cuentas)

	body, _ = json.Marshal(map[string]string{
		"producto":        "Otro",
		"cuenta_contable": "no-numérica",
	})
	req = httptest.NewRequest(http.MethodPost, "/productos", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.CrearProducto(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartDiccionario(t *testing.T, filas [][]string) (*bytes.Buffer, string) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("<html><body><table>")
	for _, fila := range filas {
		sb.WriteString("<tr>")
		for _, celda := range fila {
			fmt.Fprintf(&sb, "<td>%s</td>", celda)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table></body></html>")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("archivo", "diccionario.xls")
	require.NoError(t, err)
	_, err = part.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestConfiguracionImportarCombos(t *testing.T) {
	db := setupDB(t)
	c := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	diccionarios := services.NewDiccionarioService(db, c)
	h := NewConfiguracionHandler(db, diccionarios)

	body, contentType := multipartDiccionario(t, [][]string{
		{"Combo Desayuno", "3"},
		{"Combo Almuerzo", "2"},
		{"Salto Inválido", "0"},
		{"", "5"},
	})
	req := httptest.NewRequest(http.MethodPost, "/combos/importar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportarCombos(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res["importados"])
	assert.Equal(t, 2, res["ignorados"])

	combos, err := diccionarios.Combos()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Combo Desayuno": 3, "Combo Almuerzo": 2}, combos)
}

func TestConfiguracionImportarProductos(t *testing.T) {
	db := setupDB(t)
	c := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	diccionarios := services.NewDiccionarioService(db, c)
	h := NewConfiguracionHandler(db, diccionarios)

	body, contentType := multipartDiccionario(t, [][]string{
		{"Cafe Americano", "701101"},
		{"Cuenta Mala", "no-numérica"},
	})
	req := httptest.NewRequest(http.MethodPost, "/productos/importar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ImportarProductos(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cuentas, err := diccionarios.Cuentas()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Cafe Americano": "701101"}, cuentas)
}

func TestHistorialEndpoints(t *testing.T) {
	db := setupDB(t)
	h := NewHistorialHandler(db)

	registro := &model.ProcesamientoHistorial{
		NombreArchivo:      "ventas.xls",
		Mes:                "07",
		SubdiarioInicial:   5,
		ComprobanteInicial: 1,
		CodigosFaltantes:   "[]",
	}
	require.NoError(t, registro.Crear(db))

	r := chi.NewRouter()
	r.Get("/historial", h.Listar)
	r.Get("/historial/{id}", h.Obtener)

	req := httptest.NewRequest(http.MethodGet, "/historial", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var lista []model.ProcesamientoHistorial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lista))
	require.Len(t, lista, 1)
	assert.Equal(t, "ventas.xls", lista[0].NombreArchivo)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/historial/%d", registro.ID), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/historial/9999", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
