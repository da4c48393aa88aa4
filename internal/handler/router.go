package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saas-webapp/web/internal/model"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AllowedOrigins []string
	Cookies        interface {
		cookieEncoder
		cookieDecoder
	}
	Sessions interface {
		sessionService
		sessionLoader
	}
	Logger *zap.Logger
}

// NewRouter wires the public routes. Middleware order: recovery, CORS, session.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, model.ErrorResponse{Error: "Method Not Allowed"})
	})
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.AllowedOrigins, true))
	router.Use(SessionMiddleware(cfg.Cookies.CookieConfig().Name, cfg.Cookies, cfg.Sessions))

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/openapi.json", OpenAPIDoc)

	auth := NewAuthHandler(cfg.Sessions, cfg.Cookies, cfg.Logger)

	api := router.Group("/api")
	{
		api.POST("/auth/login", auth.Login)
		api.GET("/auth/session", auth.Session)
		api.POST("/auth/logout", auth.Logout)
		api.POST("/refresh-user", auth.RefreshUser)
	}

	return router
}
