package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/api/middleware"
	"cvBuilder/internal/notify"
	"cvBuilder/internal/session"
)

// loadSession 解析路径中的会话，失败时已写入响应。
func loadSession(c *gin.Context, store *session.Store) (*session.Session, bool) {
	var uri sessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		BadRequest(c, "invalid session id")
		return nil, false
	}
	sess, err := store.Get(uri.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			NotFound(c, "session not found")
			return nil, false
		}
		Internal(c, "failed to load session")
		return nil, false
	}
	return sess, true
}

// publish 推送会话事件，失败只记录日志。
func publish(c *gin.Context, broker notify.Broker, msg notify.Message) {
	if broker == nil {
		return
	}
	msg.CorrelationID = middleware.GetCorrelationID(c)
	// 推送不应受请求取消影响。
	if err := broker.Publish(context.WithoutCancel(c.Request.Context()), msg); err != nil {
		middleware.LoggerFromContext(c).Warn("publish session event failed",
			slog.String("session_id", msg.SessionID),
			slog.Any("error", err),
		)
	}
}
