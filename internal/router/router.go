package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"inventario/internal/config"
	"inventario/internal/handler"
	"inventario/internal/infra"
	"inventario/internal/middleware"
	"inventario/internal/repository"
	"inventario/internal/service"
	"inventario/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine plus the
// worker handlers main hands to the pool.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) (*gin.Engine, *worker.Handlers) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	smtpBreaker := infra.NewCircuitBreaker(3, 2*time.Minute)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sitioRepo := repository.NewSitioRepository(db)
	equipoRepo := repository.NewEquipoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	sitioSvc := service.NewSitioService(sitioRepo)
	equipoSvc := service.NewEquipoService(equipoRepo, sitioRepo)
	exportSvc := service.NewExportService(equipoRepo, mailer, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	sitiosH := handler.NewSitiosHandler(sitioSvc)
	equiposH := handler.NewEquiposHandler(equipoSvc)
	exportH := handler.NewExportHandler(exportSvc)
	agenteH := handler.NewAgenteHandler(equipoSvc, dispatcher)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Agent ingest — shared token, not JWT; rate-limited per agent IP
	agente := r.Group("/v1/agente", middleware.AgentAuth(cfg.AgentToken), middleware.RateLimiter(120, time.Minute))
	{
		agente.POST("/reportes", agenteH.Reporte)
		agente.GET("/ws", agenteH.WS)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	lectura := middleware.RequireRole("consulta", "operador", "administrador")
	escritura := middleware.RequireRole("operador", "administrador")
	admin := middleware.RequireRole("administrador")

	v1 := r.Group("/v1", jwtMW)
	{
		// Sitios — any role can read, operators create, only admins delete
		v1.GET("/sitios", lectura, sitiosH.Listar)
		v1.POST("/sitios", escritura, sitiosH.Crear)
		v1.DELETE("/sitios/:id", admin, sitiosH.Eliminar)

		// Equipos — static sibling routes (tabla, export) must coexist with :id
		v1.GET("/equipos", lectura, equiposH.Listar)
		v1.GET("/equipos/tabla", lectura, equiposH.Tabla)
		v1.GET("/equipos/export", lectura, exportH.Exportar)
		v1.GET("/equipos/:id", lectura, equiposH.Obtener)
		v1.GET("/equipos/:id/acta", lectura, exportH.Acta)

		equipos := v1.Group("/equipos", escritura)
		{
			equipos.POST("", equiposH.Registrar)
			equipos.PUT("/:id", equiposH.Actualizar)
			equipos.DELETE("/:id", equiposH.Eliminar)
			equipos.POST("/tabla", equiposH.GuardarTabla)
			equipos.POST("/export/correo", exportH.EnviarCorreo)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := &worker.Handlers{
		Reportes:      worker.NewReporteWorker(equipoSvc),
		Exportaciones: worker.NewCorreoWorker(exportSvc, mailer, smtpBreaker),
	}
	return r, handlers
}
