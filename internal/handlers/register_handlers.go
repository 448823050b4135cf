package handlers

import (
	"sync"

	"github.com/SscSPs/construction_budget_app/cmd/docs"
	portssvc "github.com/SscSPs/construction_budget_app/internal/core/ports/services"
	"github.com/SscSPs/construction_budget_app/internal/dto"
	"github.com/SscSPs/construction_budget_app/internal/middleware"
	"github.com/SscSPs/construction_budget_app/internal/platform/config"
	"github.com/SscSPs/construction_budget_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	generationLimiter *limiter.Limiter,
	posthogClient *utils.PosthogClientWrapper,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	// Every v1 route is authenticated; analytics run after auth so events carry the actor
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(posthogClient))
	RegisterRecurringRoutes(v1, services, generationLimiter)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// RegisterRecurringRoutes registers every recurring-transaction route on an authenticated group.
// Handlers read "today" from services.Clock, or the real clock when it is nil.
func RegisterRecurringRoutes(
	rg *gin.RouterGroup,
	services *portssvc.ServiceContainer,
	generationLimiter *limiter.Limiter,
) {
	registerBindingValidations()

	clock := services.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	registerRecurringTemplateRoutes(rg, services.Template, services.Generator, clock)
	registerRecurringTransactionRoutes(rg, services.Transaction)
	registerGenerationRoutes(rg, services.Generator, clock, generationLimiter)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

var validationsOnce sync.Once

// registerBindingValidations adds the request struct rules to gin's validator.
func registerBindingValidations() {
	validationsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			dto.RegisterValidations(v)
		}
	})
}
