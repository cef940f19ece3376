package api

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/api/middleware"
	"cvBuilder/internal/export"
	"cvBuilder/internal/metrics"
	"cvBuilder/internal/notify"
	"cvBuilder/internal/preview"
	"cvBuilder/internal/session"
)

// Exporter 将画布导出为 PDF。
type Exporter interface {
	Export(ctx context.Context, surface preview.Surface, subjectName string) (*export.Artifact, error)
}

// ExportHandler 负责同步导出 PDF 并以附件形式返回。
type ExportHandler struct {
	Sessions *session.Store
	Renderer *preview.Renderer
	Exporter Exporter
	Broker   notify.Broker
}

// NewExportHandler 返回 ExportHandler 实例。
func NewExportHandler(sessions *session.Store, renderer *preview.Renderer, exporter Exporter, broker notify.Broker) *ExportHandler {
	return &ExportHandler{
		Sessions: sessions,
		Renderer: renderer,
		Exporter: exporter,
		Broker:   broker,
	}
}

// ExportPDF 导出当前快照。同一会话上正在导出时直接返回 409。
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	log := middleware.LoggerFromContext(c).With(slog.String("session_id", sess.ID))

	release, err := sess.Export.Acquire()
	if err != nil {
		if errors.Is(err, export.ErrExportInProgress) {
			metrics.ExportRejected()
			log.Info("export rejected, another export is running")
			Conflict(c, err.Error())
			return
		}
		Internal(c, "failed to start export")
		return
	}
	defer release()

	snap := sess.Document.Snapshot()
	surface, err := h.Renderer.Render(snap)
	if err != nil {
		log.Error("render surface for export", slog.Any("error", err))
		Internal(c, "failed to render preview")
		return
	}

	event := notify.Message{
		Type:      notify.TypeExport,
		Status:    notify.StatusStarted,
		SessionID: sess.ID,
		Revision:  snap.Revision,
	}
	publish(c, h.Broker, event)

	artifact, err := h.Exporter.Export(c.Request.Context(), surface, snap.SubjectName())
	if err != nil {
		stage, _ := export.StageOf(err)
		log.Error("pdf export failed",
			slog.String("stage", string(stage)),
			slog.Uint64("revision", snap.Revision),
			slog.Any("error", err),
		)
		event.Status = notify.StatusFailed
		event.ErrorCode = exportErrorCode(err)
		event.ErrorMessage = exportFailedMessage
		publish(c, h.Broker, event)
		ExportFailed(c, err)
		return
	}

	event.Status = notify.StatusCompleted
	event.FileName = artifact.FileName
	publish(c, h.Broker, event)

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": artifact.FileName,
	}))
	c.Data(http.StatusOK, export.ContentType, artifact.Data)
}
