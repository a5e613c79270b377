package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Trishit-H/tourhub/internal/auth"
	"github.com/Trishit-H/tourhub/internal/cache"
	"github.com/Trishit-H/tourhub/internal/config"
	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/Trishit-H/tourhub/internal/http/handlers"
	"github.com/Trishit-H/tourhub/internal/http/middlewares"
	"github.com/Trishit-H/tourhub/internal/mail"
	"github.com/Trishit-H/tourhub/internal/observability"
	"github.com/Trishit-H/tourhub/internal/repo/postgres"
)

// NewRouter wires the whole HTTP surface: global middleware, the auth gate,
// and the versioned tour/user routes.
func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, mailer mail.Mailer, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.Configure(cfg.Env, log)

	r := gin.New()

	prom := observability.NewProm(reg)

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	apiLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	// repos and handlers
	toursRepo := postgres.NewToursRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	toursHandler := handlers.NewToursHandler(toursRepo, cache.New(cfg.ListCacheTTL))
	usersHandler := handlers.NewUsersHandler(usersRepo)
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, mailer, cfg.ResetTokenTTL, cfg.AppBaseURL)

	ping := func() error {
		if pool == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
	healthHandler := handlers.NewHealthHandler(ping)

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	api.Use(apiLimiter.Middleware(middlewares.KeyByUserOrIP))

	tours := api.Group("/tours")
	{
		tours.GET("", toursHandler.ListTours)
		tours.GET("/top-5-cheap", toursHandler.TopTours)
		tours.GET("/stats", toursHandler.TourStats)
		tours.GET("/:id", toursHandler.GetTour)

		staff := tours.Group("")
		staff.Use(authMW.RequireAuth())
		staff.POST("", authMW.RequireRole(user.RoleAdmin, user.RoleLeadGuide), toursHandler.CreateTour)
		staff.PATCH("/:id", authMW.RequireRole(user.RoleAdmin, user.RoleLeadGuide), toursHandler.UpdateTour)
		staff.DELETE("/:id", authMW.RequireRole(user.RoleAdmin, user.RoleLeadGuide), toursHandler.DeleteTour)
	}

	authRoutes := api.Group("/auth")
	{
		// credential routes get the tighter limiter on top of the global one
		perIP := authLimiter.Middleware(middlewares.KeyByIP)
		authRoutes.POST("/signup", perIP, authHandler.SignUp)
		authRoutes.POST("/login", perIP, authHandler.Login)
		authRoutes.POST("/forgot-password", perIP, authHandler.ForgotPassword)
		authRoutes.PATCH("/reset-password/:token", perIP, authHandler.ResetPassword)
		authRoutes.PATCH("/update-password", authMW.RequireAuth(), authHandler.UpdatePassword)
	}

	users := api.Group("/users")
	{
		me := users.Group("/me")
		me.Use(authMW.RequireAuth())
		me.GET("", usersHandler.Me)
		me.PATCH("", usersHandler.UpdateMe)
		me.DELETE("", usersHandler.DeleteMe)

		admin := users.Group("")
		admin.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
		admin.GET("", usersHandler.ListUsers)
		admin.GET("/:id", usersHandler.GetUser)
		admin.PATCH("/:id", usersHandler.UpdateUser)
		admin.DELETE("/:id", usersHandler.DeleteUser)
	}

	return r
}
