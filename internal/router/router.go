package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/portalacademico/portal-backend/internal/config"
	"github.com/portalacademico/portal-backend/internal/handler"
	"github.com/portalacademico/portal-backend/internal/middleware"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/portalacademico/portal-backend/internal/response"
	"github.com/portalacademico/portal-backend/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Catalog     *handler.CatalogHandler
	Enrollment  *handler.EnrollmentHandler
	Coordinator *handler.CoordinatorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Catalog Group (Public) ─────────────────────────────────────
	// The detail route resolves claims when a token is present so the
	// last viewed course can be recorded, but never requires one.
	catalog := router.Group("/api/v1/courses")
	{
		catalog.GET("", handlers.Catalog.Catalog)
		catalog.GET("/:id", middleware.OptionalAuth(authService), handlers.Catalog.Detail)
	}

	// ─── 3. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1")
	studentAPI.Use(middleware.RequireAuth(authService))
	{
		studentAPI.GET("/courses/:id/enroll", handlers.Enrollment.EnrollPreview)
		studentAPI.POST("/courses/:id/enroll", handlers.Enrollment.Enroll)
		studentAPI.GET("/me/enrollments", handlers.Enrollment.MyEnrollments)
		studentAPI.POST("/me/enrollments/:id/cancel", handlers.Enrollment.Cancel)
		studentAPI.GET("/me/last-viewed-course", handlers.Catalog.LastViewed)
	}

	// ─── 4. Coordinator Group (JWT + Role) ─────────────────────────────
	coordinatorAPI := router.Group("/api/v1/coordinator")
	coordinatorAPI.Use(
		middleware.RequireAuth(authService),
		middleware.RequireRole(model.RoleCoordinator),
	)
	{
		coordinatorAPI.GET("/courses", handlers.Coordinator.ListCourses)
		coordinatorAPI.POST("/courses", handlers.Coordinator.CreateCourse)
		coordinatorAPI.GET("/courses/:id", handlers.Coordinator.GetCourse)
		coordinatorAPI.PUT("/courses/:id", handlers.Coordinator.UpdateCourse)
		coordinatorAPI.GET("/enrollments", handlers.Coordinator.ListEnrollments)
		coordinatorAPI.POST("/enrollments/:id/confirm", handlers.Coordinator.ConfirmEnrollment)
		coordinatorAPI.POST("/enrollments/:id/cancel", handlers.Coordinator.CancelEnrollment)
	}

	return router
}
