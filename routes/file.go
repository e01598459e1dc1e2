package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/securevault/securevault-backend/auth"
	"github.com/securevault/securevault-backend/auth/middleware"
	"github.com/securevault/securevault-backend/handlers"
)

func RegisterFileRoutes(
	r *gin.Engine,
	tokens *auth.Service,
	files *handlers.FileHandler,
	shares *handlers.ShareHandler,
	auditLogs *handlers.AuditHandler,
) {
	fileGroup := r.Group("/api/files")

	// public share endpoints
	fileGroup.POST("/shared/:token/verify", shares.Verify)
	fileGroup.GET("/shared/:token", shares.Download)
	fileGroup.GET("/shared/:token/qr", shares.QRCode)

	protected := fileGroup.Group("")
	protected.Use(middleware.AuthRequired(tokens))
	protected.POST("/upload", files.Upload)
	protected.GET("/download/:id", files.Download)
	protected.GET("/myfiles", files.List)
	protected.DELETE("/delete/:id", files.Delete)
	protected.POST("/share/:id", shares.Create)
	protected.GET("/audit/logs", auditLogs.Logs)
}
