package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/metrics/export/prometheus"
	"github.com/rentora/rentauth/middleware"
)

// newRouter wires gin routes and middleware.
func newRouter(engine *rentauth.Engine, h *handlers, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	auth := router.Group("/v1/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/federated", h.federatedLogin)

		password := auth.Group("/password")
		{
			password.POST("/forgot", h.forgotPassword)
			password.POST("/reset", h.resetPassword)
			password.POST("/change", middleware.RequireSession(engine), h.changePassword)
		}

		auth.GET("/verify-email", h.verifyEmail)
		auth.POST("/verify-email/resend", middleware.RequireSession(engine), h.resendVerificationEmail)
	}

	me := router.Group("/v1/me", middleware.RequireSession(engine))
	{
		me.GET("", h.me)
		me.PATCH("/profile", h.updateProfile)
		me.POST("/verification", h.completeVerification)
		me.GET("/national-id", h.revealNationalID)
	}

	router.GET("/healthz", h.healthz)
	router.GET("/metrics", gin.WrapH(prometheus.NewPrometheusExporter(engine).Handler()))

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
