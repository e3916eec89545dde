package router

import (
	"github.com/cuentaflix/cuentaflix/internal/config"
	adminhandlers "github.com/cuentaflix/cuentaflix/internal/http/handlers/admin"
	publichandlers "github.com/cuentaflix/cuentaflix/internal/http/handlers/public"
	"github.com/cuentaflix/cuentaflix/internal/http/response"
	"github.com/cuentaflix/cuentaflix/internal/logger"
	"github.com/cuentaflix/cuentaflix/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter inicializa las rutas
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// Endpoints públicos
		public := apiV1.Group("/public")
		{
			public.GET("/planes", publicHandler.GetPlanes)
			public.POST("/ordenes", publicHandler.CreateOrder)
			public.GET("/ordenes/:order_no", publicHandler.GetOrder)
		}

		// Panel de administración
		admin := apiV1.Group("/admin")
		{
			admin.POST("/auth/login", adminHandler.Login)

			authed := admin.Group("")
			authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authed.GET("/auth/me", adminHandler.Me)

				authed.GET("/planes", adminHandler.ListPlanes)
				authed.POST("/planes", adminHandler.CreatePlan)
				authed.GET("/planes/:id", adminHandler.GetPlan)
				authed.PUT("/planes/:id", adminHandler.UpdatePlan)
				authed.DELETE("/planes/:id", adminHandler.DeletePlan)
				authed.GET("/planes/:id/stock", adminHandler.GetStock)

				authed.GET("/inventario", adminHandler.ListInventario)
				authed.POST("/inventario", adminHandler.LoadCredenciales)
				authed.POST("/credenciales/:id/liberar", adminHandler.LiberarCredencial)
				authed.POST("/credenciales/:id/mantenimiento", adminHandler.MantenimientoCredencial)

				authed.GET("/ordenes", adminHandler.ListOrdenes)
				authed.GET("/ordenes/:id", adminHandler.GetOrden)
				authed.POST("/ordenes/:id/confirmar-pago", adminHandler.ConfirmarPago)
				authed.POST("/ordenes/:id/cancelar", adminHandler.CancelarOrden)
				authed.POST("/orden-items/:id/asignar", adminHandler.AsignarItem)
				authed.POST("/orden-items/:id/entregar", adminHandler.EntregarItem)

				authed.GET("/suscripciones", adminHandler.ListSuscripciones)
				authed.POST("/suscripciones", adminHandler.CrearSuscripcion)
				authed.GET("/suscripciones/:id", adminHandler.GetSuscripcion)
				authed.PUT("/suscripciones/:id", adminHandler.UpdateSuscripcion)
				authed.POST("/suscripciones/:id/renovar", adminHandler.RenovarSuscripcion)
				authed.POST("/suscripciones/:id/pausar", adminHandler.PausarSuscripcion)
				authed.POST("/suscripciones/:id/reanudar", adminHandler.ReanudarSuscripcion)
				authed.POST("/suscripciones/:id/cancelar", adminHandler.CancelarSuscripcion)

				authed.POST("/vencimientos/verificar", adminHandler.VerificarVencimientos)
			}
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "recurso no encontrado")
	})

	return r
}
