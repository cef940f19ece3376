package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/notify"
	"cvBuilder/internal/preview"
	"cvBuilder/internal/session"
	"cvBuilder/internal/upload"
)

// Dependencies 汇总路由所需的组件。
type Dependencies struct {
	Sessions       *session.Store
	Renderer       *preview.Renderer
	Exporter       Exporter
	Intake         *upload.Intake
	Broker         notify.Broker
	Logger         *slog.Logger
	AllowedOrigins []string
}

// RegisterRoutes 注册 /v1 下的会话路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	documentHandler := NewDocumentHandler(deps.Sessions, deps.Broker)
	photoHandler := NewPhotoHandler(deps.Sessions, deps.Intake, deps.Broker)
	previewHandler := NewPreviewHandler(deps.Sessions, deps.Renderer)
	exportHandler := NewExportHandler(deps.Sessions, deps.Renderer, deps.Exporter, deps.Broker)
	wsHandler := NewWsHandler(deps.Sessions, deps.Broker, deps.Logger, deps.AllowedOrigins)

	v1 := router.Group("/v1")
	{
		v1.POST("/sessions", documentHandler.CreateSession)

		sessionGroup := v1.Group("/sessions/:id")
		{
			sessionGroup.GET("/document", documentHandler.GetDocument)
			sessionGroup.PUT("/document", documentHandler.ReplaceDocument)
			sessionGroup.PATCH("/personal", documentHandler.SetPersonal)
			sessionGroup.POST("/lists/:list", documentHandler.AppendEntry)
			sessionGroup.PATCH("/lists/:list/:index", documentHandler.UpdateEntry)
			sessionGroup.DELETE("/lists/:list/:index", documentHandler.RemoveEntry)
			sessionGroup.POST("/photo", photoHandler.UploadPhoto)
			sessionGroup.GET("/preview", previewHandler.GetPreview)
			sessionGroup.POST("/export", exportHandler.ExportPDF)
			sessionGroup.GET("/ws", wsHandler.HandleConnection)
		}
	}
}
