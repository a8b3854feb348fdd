package http

import (
	"log/slog"

	"cafeblog/internal/auth"
	"cafeblog/internal/cache"
	"cafeblog/internal/config"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/http/handlers"
	"cafeblog/internal/http/middlewares"
	"cafeblog/internal/observability"
	"cafeblog/internal/repo/postgres"
	"cafeblog/internal/service"
	"cafeblog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries the long-lived pieces main constructs once and the router
// threads through the handlers.
type Deps struct {
	Cfg   config.Config
	Log   *slog.Logger
	Pool  *pgxpool.Pool
	Prom  *observability.Prom
	Cache cache.Store
	JWT   *auth.Manager
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("cafeblog"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// wire up repositories

	accountsRepo := postgres.NewAccountsRepo(d.Pool)
	postsRepo := postgres.NewPostsRepo(d.Pool, d.Prom)
	refreshRepo := postgres.NewRefreshTokensRepo(d.Pool)

	// services

	roles := account.NewStaticRoleResolver(d.Cfg.AdminIDs)
	accountService := service.NewAccountService(accountsRepo, roles, d.Log)

	files := storage.NewManager(d.Cfg.UploadDir, d.Log, d.Prom)
	postService := service.NewPostService(postsRepo, accountsRepo, files, d.Log)

	// handlers

	healthHandler := handlers.NewHealthHandler(d.Pool)
	authHandler := handlers.NewAuthHandler(accountService, d.JWT, refreshRepo, d.Cfg)
	accountsHandler := handlers.NewAccountsHandler(accountService)
	postsHandler := handlers.NewPostsHandler(postService, d.Cache)

	requireAuth := middlewares.NewAuthMiddleware(d.JWT, accountService).RequireAuth()

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})))

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RequireJSON())
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// reads are public, mutations require a token; the service layer decides
	// who inside the authenticated set may actually mutate

	r.GET("/posts", postsHandler.SearchPosts)
	r.GET("/posts/:id", postsHandler.GetPostById)

	postsGroup := r.Group("/posts")
	postsGroup.Use(middlewares.MaxBodyBytes(d.Cfg.MaxUploadBytes), requireAuth)
	{
		postsGroup.POST("", postsHandler.CreatePost)
		postsGroup.PUT("/:id", postsHandler.UpdatePost)
		postsGroup.DELETE("/:id", postsHandler.DeletePost)
	}

	accountsGroup := r.Group("/accounts")
	accountsGroup.Use(requireAuth)
	{
		accountsGroup.GET("/:id", accountsHandler.GetAccount)
		accountsGroup.PUT("/:id", middlewares.RequireJSON(), accountsHandler.UpdateAccount)
		accountsGroup.DELETE("/:id", accountsHandler.DeleteAccount)
	}

	return r
}
