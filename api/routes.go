package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/iamail/mailgate/api/handlers"
	"github.com/iamail/mailgate/api/middleware"
	"github.com/iamail/mailgate/internal/provider"
	"github.com/iamail/mailgate/internal/repository"
	"github.com/iamail/mailgate/internal/tracing"
	"github.com/iamail/mailgate/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, catalog *provider.Catalog, resolver *provider.Resolver, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// setup handlers
	apiHandlers := handlers.InitHandlers(s)

	// Health check endpoint (no custom context needed)
	r.GET("/health", handlers.HealthCheck)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-IAM-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.OwnerUserIdMiddleware())
	api.Use(middleware.CustomContextMiddleware("mailgate")) // Add custom context for all /v1/* endpoints
	api.Use(middleware.TracingMiddleware())                 // Add tracing for all /v1/* endpoints
	{
		// Provider catalog endpoints
		providers := api.Group("/providers")
		{
			providers.GET("", handlers.ListProviders(catalog))
			providers.GET("/resolve", handlers.ResolveProvider(resolver))
		}

		// Account credential endpoints
		accounts := api.Group("/accounts")
		{
			accounts.POST("", apiHandlers.Accounts.Connect())
			accounts.GET("", apiHandlers.Accounts.List())
			accounts.GET("/active", apiHandlers.Accounts.GetActive())
			accounts.PUT("/:id/activate", apiHandlers.Accounts.Activate())
			accounts.POST("/:id/redetect", apiHandlers.Accounts.Redetect())
			accounts.POST("/deduplicate", apiHandlers.Accounts.Deduplicate())
			accounts.DELETE("/:id", apiHandlers.Accounts.Remove())
		}
	}
}
