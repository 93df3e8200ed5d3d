package controllers

import (
	"log/slog"
	"net/http"

	"redirly/internal/jwt"
	"redirly/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RouterConfig holds everything the HTTP routes depend on
type RouterConfig struct {
	Auth    *AuthController
	Links   *LinkController
	QRCode  *QRCodeController
	JWT     *jwt.JWTService
	Metrics http.Handler
	Logger  *slog.Logger

	GeneralLimiter  *middleware.RateLimiter
	AuthLimiter     *middleware.RateLimiter
	RedirectLimiter *middleware.RateLimiter
}

// NewRouter builds the gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(cfg.Logger), middleware.Recovery(cfg.Logger))

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	router.GET("/:slug", cfg.RedirectLimiter.LimitMiddleware(), cfg.Links.Redirect)

	api := router.Group("/api/v1")
	api.Use(cfg.GeneralLimiter.LimitMiddleware())
	{
		auth := api.Group("/auth")
		auth.Use(cfg.AuthLimiter.LimitMiddleware())
		{
			auth.POST("/signin", cfg.Auth.SignIn)
			auth.POST("/signup", cfg.Auth.SignUp)
			auth.GET("/oauth/:provider", cfg.Auth.OAuthLogin)
			auth.POST("/password-reset", cfg.Auth.PasswordReset)
			auth.PUT("/user", middleware.ForwardToken(), cfg.Auth.UpdateUser)
			auth.POST("/signout", middleware.ForwardToken(), cfg.Auth.SignOut)
		}

		protected := api.Group("/links")
		protected.Use(middleware.AuthMiddleware(cfg.JWT))
		{
			protected.POST("", cfg.Links.CreateLink)
			protected.GET("", cfg.Links.ListLinks)
			protected.GET("/:id", cfg.Links.GetLink)
			protected.PUT("/:id", cfg.Links.UpdateLink)
			protected.DELETE("/:id", cfg.Links.DeleteLink)
		}

		api.GET("/status/:slug", cfg.Links.LinkStatus)
		api.GET("/qrcode/:slug", cfg.QRCode.GenerateQRCode)
	}

	return router
}
