package router

import (
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/blog-api/docs"
	"github.com/d60-Lab/blog-api/internal/api/handler"
	"github.com/d60-Lab/blog-api/internal/api/middleware"
	"github.com/d60-Lab/blog-api/internal/config"
	"github.com/d60-Lab/blog-api/internal/service"
)

// Options 组装路由所需的开关
type Options struct {
	Settings     *config.Settings
	SentryActive bool
	Tracing      bool
}

// New assembles the gin engine: middleware chain, public auth routes and
// the token-protected post routes.
func New(h *handler.Handler, auth service.AuthService, opts Options) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.SentryActive {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.Settings.ProjectName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if opts.Settings.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(opts.Settings.RateLimitRPS, opts.Settings.RateLimitBurst))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Welcome to Blog API"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)

		posts := api.Group("/posts")
		posts.Use(middleware.RequireAuth(auth))
		{
			posts.POST("", h.CreatePost)
			posts.GET("", h.ListPosts)
			posts.GET("/:id", h.GetPost)
			posts.PUT("/:id", h.UpdatePost)
			posts.DELETE("/:id", h.DeletePost)
		}
	}

	return r
}

// registerValidators adds the custom binding rules used by request
// structs. Registering twice is harmless, the engine overwrites.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}
