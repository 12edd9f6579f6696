package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/ventascontables/backend/src/config"
	"github.com/username/ventascontables/backend/src/database"
	"github.com/username/ventascontables/backend/src/handlers"
	"github.com/username/ventascontables/backend/src/logger"
	"github.com/username/ventascontables/backend/src/model"
	"github.com/username/ventascontables/backend/src/security"
	"github.com/username/ventascontables/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:5173":    true,
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// bootstrapAdmin creates the first admin account from the environment
// when the users table is empty, so a fresh install is usable.
func bootstrapAdmin() {
	n, err := model.CountUsuarios(database.DB)
	if err != nil {
		logger.L.Error("Could not count users for admin bootstrap", "error", err)
		return
	}
	if n > 0 {
		return
	}
	if config.Cfg.AdminEmail == "" || config.Cfg.AdminPassword == "" {
		logger.L.Warn("No users exist and ADMIN_EMAIL/ADMIN_PASSWORD are unset; nobody can log in")
		return
	}

	admin := model.Usuario{Email: config.Cfg.AdminEmail, Nombre: "Administrador", EsAdmin: true}
	if err := admin.HashPassword(config.Cfg.AdminPassword); err != nil {
		logger.L.Error("Admin bootstrap: hashing failed", "error", err)
		return
	}
	if err := admin.Crear(database.DB); err != nil {
		logger.L.Error("Admin bootstrap: insert failed", "error", err)
		return
	}
	logger.L.Info("Admin account created", "email", admin.Email)
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Ventas Contables backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid: must be at least 32 characters.")
		os.Exit(1)
	}

	if err := os.MkdirAll(config.Cfg.UploadDir, 0o755); err != nil {
		stdlog.Fatalf("Failed to create upload directory %s: %v", config.Cfg.UploadDir, err)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)
	bootstrapAdmin()

	dictCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	diccionarioService := services.NewDiccionarioService(database.DB, dictCache)
	procesamientoService := services.NewProcesamientoService()
	uploadService := services.NewUploadService(database.DB, diccionarioService, procesamientoService, config.Cfg.UploadDir)

	userHandler := handlers.NewUserHandler(database.DB, authService)
	procesamientoHandler := handlers.NewProcesamientoHandler(uploadService)
	configuracionHandler := handlers.NewConfiguracionHandler(database.DB, diccionarioService)
	historialHandler := handlers.NewHistorialHandler(database.DB)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Ventas Contables Backend is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Rutas públicas
		r.Post("/auth/login", userHandler.LoginUserHandler)

		// Rutas protegidas
		r.Group(func(r chi.Router) {
			r.Use(userHandler.AuthMiddleware)

			r.Get("/auth/me", userHandler.MeHandler)

			r.Post("/procesamiento/procesar", procesamientoHandler.HandleProcesar)
			r.Get("/procesamiento/descargar/{archivo}", procesamientoHandler.HandleDescargar)

			r.Get("/configuracion/productos", configuracionHandler.ListarProductos)
			r.Post("/configuracion/productos", configuracionHandler.CrearProducto)
			r.Put("/configuracion/productos/{id}", configuracionHandler.ActualizarProducto)
			r.Delete("/configuracion/productos/{id}", configuracionHandler.EliminarProducto)
			r.Post("/configuracion/productos/importar", configuracionHandler.ImportarProductos)

			r.Get("/configuracion/combos", configuracionHandler.ListarCombos)
			r.Post("/configuracion/combos", configuracionHandler.CrearCombo)
			r.Put("/configuracion/combos/{id}", configuracionHandler.ActualizarCombo)
			r.Delete("/configuracion/combos/{id}", configuracionHandler.EliminarCombo)
			r.Post("/configuracion/combos/importar", configuracionHandler.ImportarCombos)

			r.Get("/historial", historialHandler.Listar)
			r.Get("/historial/{id}", historialHandler.Obtener)

			// Rutas de administración
			r.Group(func(r chi.Router) {
				r.Use(userHandler.AdminMiddleware)
				r.Post("/auth/register", userHandler.RegisterUserHandler)
			})
		})
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
