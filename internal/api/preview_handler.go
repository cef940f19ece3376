package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/api/middleware"
	"cvBuilder/internal/preview"
	"cvBuilder/internal/session"
)

// PreviewHandler 返回与导出完全一致的 HTML 画布。
type PreviewHandler struct {
	Sessions *session.Store
	Renderer *preview.Renderer
}

// NewPreviewHandler 返回 PreviewHandler 实例。
func NewPreviewHandler(sessions *session.Store, renderer *preview.Renderer) *PreviewHandler {
	return &PreviewHandler{Sessions: sessions, Renderer: renderer}
}

// GetPreview 渲染当前快照。
func (h *PreviewHandler) GetPreview(c *gin.Context) {
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	surface, err := h.Renderer.Render(sess.Document.Snapshot())
	if err != nil {
		middleware.LoggerFromContext(c).Error("render preview", slog.Any("error", err))
		Internal(c, "failed to render preview")
		return
	}
	c.Header("X-CV-Revision", strconv.FormatUint(surface.Revision, 10))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(surface.HTML))
}
