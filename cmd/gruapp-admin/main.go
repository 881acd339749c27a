package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexitico1989/gruapp-sub002/internal/api"
	"github.com/alexitico1989/gruapp-sub002/internal/config"
	"github.com/alexitico1989/gruapp-sub002/internal/database"
	"github.com/alexitico1989/gruapp-sub002/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting GruApp admin service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Conectar a Redis; el servicio opera sin caché si no está disponible
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	// Inicializar repositorios
	servicioRepo := database.NewServicioRepository(db, logger)
	grueroRepo := database.NewGrueroRepository(db, logger)
	clienteRepo := database.NewClienteRepository(db, logger)
	pagoRepo := database.NewPagoRepository(db, logger)
	reclamoRepo := database.NewReclamoRepository(db, logger)
	adminKeyRepo := database.NewAdminKeyRepository(db, logger)

	// Inicializar servicios
	var cache services.Cache
	if redis != nil {
		cache = redis
	}
	servicioService := services.NewServicioService(servicioRepo, logger)
	liquidacionService := services.NewLiquidacionService(
		servicioRepo, grueroRepo, pagoRepo, cache, cfg.Liquidacion.CacheTTL, logger,
	)
	cuentaService := services.NewCuentaService(grueroRepo, clienteRepo, logger)
	reclamoService := services.NewReclamoService(reclamoRepo, logger)

	// Inicializar API
	apiHandler := api.NewAPI(
		servicioService,
		liquidacionService,
		cuentaService,
		reclamoService,
		adminKeyRepo,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, db, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, db *database.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := db.HealthCheck(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "gruapp-admin",
			"version":   "1.0.0",
		})
	})

	// API v1; toda la consola opera autenticada
	v1 := router.Group("/v1")
	v1.Use(apiHandler.AdminAuthMiddleware())
	{
		// Liquidación y pagos
		v1.GET("/pagos/pendientes", apiHandler.GetPagosPendientes)
		v1.POST("/pagos/marcar-pagado", apiHandler.MarcarPagado)
		v1.GET("/pagos", apiHandler.ListPagos)
		v1.GET("/pagos/:id", apiHandler.GetPago)

		// Grueros
		v1.GET("/grueros", apiHandler.ListGrueros)
		v1.GET("/grueros/:id", apiHandler.GetGruero)
		v1.PATCH("/grueros/:id/aprobar", apiHandler.AprobarGruero)
		v1.PATCH("/grueros/:id/rechazar", apiHandler.RechazarGruero)
		v1.PATCH("/grueros/:id/suspender", apiHandler.SuspenderGruero)
		v1.PATCH("/grueros/:id/reactivar", apiHandler.ReactivarGruero)
		v1.DELETE("/grueros/:id", apiHandler.EliminarGruero)

		// Clientes
		v1.GET("/clientes", apiHandler.ListClientes)
		v1.GET("/clientes/:id", apiHandler.GetCliente)
		v1.PATCH("/clientes/:id/suspender", apiHandler.SuspenderCliente)
		v1.PATCH("/clientes/:id/reactivar", apiHandler.ReactivarCliente)
		v1.DELETE("/clientes/:id", apiHandler.EliminarCliente)

		// Servicios
		v1.GET("/servicios", apiHandler.ListServicios)
		v1.GET("/servicios/:id", apiHandler.GetServicio)
		v1.PATCH("/servicios/:id/estado", apiHandler.CambiarEstadoServicio)
		v1.PATCH("/servicios/:id/completar", apiHandler.CompletarServicio)
		v1.PATCH("/servicios/:id/cancelar", apiHandler.CancelarServicio)

		// Reclamos
		v1.GET("/reclamos", apiHandler.ListReclamos)
		v1.GET("/reclamos/:id", apiHandler.GetReclamo)
		v1.PATCH("/reclamos/:id/estado", apiHandler.MarcarReclamoEnRevision)
		v1.PATCH("/reclamos/:id/resolver", apiHandler.ResolverReclamo)
		v1.PATCH("/reclamos/:id/rechazar", apiHandler.RechazarReclamo)
		v1.PATCH("/reclamos/:id/notas", apiHandler.ActualizarNotasReclamo)

		// Credenciales de administrador
		v1.POST("/admin/keys", apiHandler.CreateAdminKey)
		v1.DELETE("/admin/keys/:id", apiHandler.RevokeAdminKey)
	}

	return router
}
