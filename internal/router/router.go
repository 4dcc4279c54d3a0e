package router

import (
	"context"
	"fmt"
	"time"

	"tiopelotte/internal/config"
	"tiopelotte/internal/handler"
	"tiopelotte/internal/infra"
	"tiopelotte/internal/middleware"
	"tiopelotte/internal/pricing"
	"tiopelotte/internal/repository"
	"tiopelotte/internal/service"
	"tiopelotte/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Servicios groups the repositories and services shared by the HTTP layer
// and the background workers.
type Servicios struct {
	Dispatcher *worker.Dispatcher

	FabricacionRepo repository.FabricacionRepository
	HistorialRepo   repository.HistorialPrecioRepository

	Proveedores   service.ProveedorService
	Productos     service.ProductoService
	Ingredientes  service.IngredienteService
	Fabricaciones service.FabricacionService
}

// NuevosServicios wires all dependencies.
// Dependency graph: Service ← Repository ← DB/Redis
func NuevosServicios(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Servicios, error) {
	// ── Infrastructure ───────────────────────────────────────────────────────
	cache, err := infra.NewCostoCache(rdb, time.Duration(cfg.CosteoCacheTTLMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("costo cache: %w", err)
	}
	dispatcher := worker.NewDispatcher(rdb)

	fabCfg := service.FabricacionConfig{
		Moneda:         cfg.Moneda,
		UnidadFallback: pricing.UnidadBase(cfg.UnidadBaseFallback),
		ExportDir:      cfg.ExportStoragePath,
		Negocio:        cfg.NombreNegocio,
		EnlaceBase:     cfg.FrontendURL,
	}
	archivo, err := infra.NewArchivoExportaciones(infra.ArchivoConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	if archivo != nil {
		fabCfg.Archivo = archivo
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	proveedorRepo := repository.NewProveedorRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	ingredienteRepo := repository.NewIngredienteRepository(db)
	fabricacionRepo := repository.NewFabricacionRepository(db)
	historialRepo := repository.NewHistorialPrecioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	return &Servicios{
		Dispatcher:      dispatcher,
		FabricacionRepo: fabricacionRepo,
		HistorialRepo:   historialRepo,
		Proveedores:     service.NewProveedorService(proveedorRepo, ingredienteRepo, fabricacionRepo, cache, dispatcher),
		Productos:       service.NewProductoService(productoRepo, fabricacionRepo, cache, dispatcher),
		Ingredientes: service.NewIngredienteService(
			ingredienteRepo, proveedorRepo, fabricacionRepo, cache, dispatcher, cfg.Moneda, cfg.Locale,
		),
		Fabricaciones: service.NewFabricacionService(fabricacionRepo, ingredienteRepo, productoRepo, cache, fabCfg),
	}, nil
}

// New returns a configured Gin engine serving svcs. ctx bounds the
// rate limiter's background purge.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Servicios) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	limiter.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.CORSOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	proveedoresH := handler.NewProveedoresHandler(svcs.Proveedores)
	productosH := handler.NewProductosHandler(svcs.Productos)
	ingredientesH := handler.NewIngredientesHandler(svcs.Ingredientes)
	historialH := handler.NewHistorialPreciosHandler(svcs.HistorialRepo)
	fabricacionesH := handler.NewFabricacionesHandler(svcs.Fabricaciones)
	unidadesH := handler.NewUnidadesHandler(cfg.Moneda, cfg.Locale)
	adminH := handler.NewAdminHandler(rdb)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.GET("/unidades", unidadesH.Listar)
		v1.POST("/unidades/precio-unitario", unidadesH.PrecioUnitario)

		prov := v1.Group("/proveedores")
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.ObtenerPorID)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
			prov.POST("/:id/precios-masivo", proveedoresH.ActualizarPreciosMasivo)
			prov.POST("/:id/lista-precios", proveedoresH.ImportarListaPrecios)
		}

		prods := v1.Group("/productos")
		{
			prods.POST("", productosH.Crear)
			prods.GET("", productosH.Listar)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
		}

		ings := v1.Group("/ingredientes")
		{
			ings.POST("", ingredientesH.Crear)
			ings.GET("", ingredientesH.Listar)
			ings.GET("/:id", ingredientesH.ObtenerPorID)
			ings.PUT("/:id", ingredientesH.Actualizar)
			ings.DELETE("/:id", ingredientesH.Desactivar)
			ings.GET("/:id/historial-precios", historialH.ListarPorIngrediente)
			ings.POST("/:id/precios", ingredientesH.AgregarPrecio)
			ings.PUT("/:id/precios/:precioId", ingredientesH.ActualizarPrecio)
			ings.DELETE("/:id/precios/:precioId", ingredientesH.EliminarPrecio)
			ings.PUT("/:id/precio-seleccionado", ingredientesH.SeleccionarPrecio)
		}

		fabs := v1.Group("/fabricaciones")
		{
			fabs.POST("", fabricacionesH.Crear)
			fabs.GET("", fabricacionesH.Listar)
			fabs.POST("/simular", fabricacionesH.Simular)
			fabs.GET("/:id", fabricacionesH.ObtenerPorID)
			fabs.PUT("/:id", fabricacionesH.Actualizar)
			fabs.DELETE("/:id", fabricacionesH.Eliminar)
			fabs.GET("/:id/calculo", fabricacionesH.Calcular)
			fabs.POST("/:id/calculo", fabricacionesH.Recalcular)
			fabs.GET("/:id/export.pdf", fabricacionesH.ExportarPDF)
			fabs.GET("/:id/export.xlsx", fabricacionesH.ExportarExcel)
		}

		admin := v1.Group("/admin/recalculo")
		{
			admin.GET("/dlq", adminH.ListarDLQ)
			admin.POST("/dlq/reencolar", adminH.ReencolarDLQ)
		}
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
