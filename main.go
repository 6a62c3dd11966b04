package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"customer-portal-server/config"
	"customer-portal-server/database"
	"customer-portal-server/jobs"
	"customer-portal-server/middleware"
	"customer-portal-server/routes"
	"customer-portal-server/servicem8"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("Failed to seed database: ", err)
	}

	sm8 := servicem8.NewClient(cfg.ServiceM8.APIKey,
		servicem8.WithTimeout(time.Duration(cfg.ServiceM8.TimeoutSeconds)*time.Second))

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := buildRouter(db, cfg, sm8)

	syncJob := jobs.NewSyncJob(sm8, 15*time.Minute)
	syncJob.Start()
	defer syncJob.Stop()

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := router.Run("0.0.0.0:" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// buildRouter assembles the middleware stack and route tree. Split out of
// main so tests can exercise the full server wiring.
func buildRouter(db *gorm.DB, cfg *config.Config, sm8 *servicem8.Client) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	middleware.RegisterMetrics()
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Every(time.Second/20), 40)))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.DatabaseReady(db))

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":              "ok",
			"timestamp":           time.Now().UTC(),
			"servicem8Configured": sm8.Configured(),
		})
	})

	// Credential endpoints get a much stricter per-IP budget.
	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Every(6*time.Second), 10)))
	routes.NewAuthHandler(db, cfg.JWT).Register(authRoutes)

	bookingHandler := routes.NewBookingHandler(db, sm8)

	// Demo support-reply path, intentionally outside the auth group.
	bookingHandler.RegisterSupportReply(api.Group("/bookings"))

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(db, cfg.JWT.Secret))
	{
		bookingHandler.Register(protected.Group("/bookings"))
		routes.NewServiceM8Handler(sm8).Register(protected.Group("/servicem8"))

		adminRoutes := protected.Group("/admin")
		adminRoutes.Use(middleware.AdminMiddleware())
		routes.NewAdminHandler(db).Register(adminRoutes)
	}

	return router
}
