package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/linkedcraft/internal/common"
	"github.com/suPer8Hu/linkedcraft/internal/config"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi/handlers"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.GET("/ping", h.Ping)

	// session
	r.GET(cfg.SignInPath, h.SignInEntry)
	r.GET("/session", h.GetSession)
	r.GET("/session/events", h.SessionEvents)
	r.GET("/generate/options", h.GenerateOptions)

	gated := r.Group("/")
	gated.Use(middleware.RequireSession(h.Store, cfg.SignInPath))
	gated.GET("/me", h.Me)
	gated.POST("/generate", h.SubmitGenerate)
	gated.GET("/generate", h.GetGenerate)
	gated.DELETE("/generate", h.ClearGenerate)
	gated.GET("/generate/content", h.GenerateContent)
	gated.GET("/posts", h.ListPosts)
	return r
}
