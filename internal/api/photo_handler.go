package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/api/middleware"
	"cvBuilder/internal/notify"
	"cvBuilder/internal/session"
	"cvBuilder/internal/upload"
)

// PhotoHandler 接收头像并以 data URI 写入文档。
type PhotoHandler struct {
	Sessions *session.Store
	Intake   *upload.Intake
	Broker   notify.Broker
}

// NewPhotoHandler 返回 PhotoHandler 实例。
func NewPhotoHandler(sessions *session.Store, intake *upload.Intake, broker notify.Broker) *PhotoHandler {
	return &PhotoHandler{Sessions: sessions, Intake: intake, Broker: broker}
}

// UploadPhoto 处理 multipart 字段 file。
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	log := middleware.LoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	photo, err := h.Intake.Accept(reader)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNotImage),
			errors.Is(err, upload.ErrTooLarge),
			errors.Is(err, upload.ErrEmpty):
			BadRequest(c, err.Error())
		case errors.Is(err, upload.ErrMalicious):
			log.Warn("photo rejected by scanner", slog.Any("error", err))
			BadRequest(c, "malicious file detected")
		default:
			log.Error("accept photo", slog.Any("error", err))
			Internal(c, "failed to process file")
		}
		return
	}

	rev, err := sess.Document.SetPersonal("photo", photo.DataURI)
	if err != nil {
		Internal(c, "failed to update document")
		return
	}
	log.Info("photo accepted",
		slog.String("media_type", photo.MediaType),
		slog.Int("bytes", photo.Size),
	)
	publish(c, h.Broker, documentEvent(sess.ID, rev))

	c.JSON(http.StatusOK, gin.H{
		"revision":  rev,
		"photoUrl":  photo.DataURI,
		"mediaType": photo.MediaType,
		"width":     photo.Width,
		"height":    photo.Height,
	})
}
