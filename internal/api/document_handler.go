package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/api/middleware"
	"cvBuilder/internal/cv"
	"cvBuilder/internal/notify"
	"cvBuilder/internal/session"
)

// DocumentHandler 负责会话创建与文档编辑。
type DocumentHandler struct {
	Sessions *session.Store
	Broker   notify.Broker
}

// NewDocumentHandler 返回 DocumentHandler 实例。
func NewDocumentHandler(sessions *session.Store, broker notify.Broker) *DocumentHandler {
	return &DocumentHandler{Sessions: sessions, Broker: broker}
}

// CreateSession 创建一个带空白文档的编辑会话。
func (h *DocumentHandler) CreateSession(c *gin.Context) {
	sess := h.Sessions.Create()
	snap := sess.Document.Snapshot()

	middleware.LoggerFromContext(c).Info("session created", slog.String("session_id", sess.ID))
	c.JSON(http.StatusCreated, gin.H{
		"id":       sess.ID,
		"document": snap,
		"revision": snap.Revision,
	})
}

// GetDocument 返回当前文档快照。
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Document.Snapshot())
}

// ReplaceDocument 以导入的 JSON 整体替换文档。
func (h *DocumentHandler) ReplaceDocument(c *gin.Context) {
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}
	next, err := cv.ParseJSON(body)
	if err != nil {
		middleware.LoggerFromContext(c).Info("document import rejected", slog.Any("error", err))
		BadRequest(c, err.Error())
		return
	}
	h.respondMutation(c, sess, sess.Document.Replace(next))
}

// SetPersonal 修改个人信息中的一个字段。
func (h *DocumentHandler) SetPersonal(c *gin.Context) {
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	rev, err := sess.Document.SetPersonal(req.Field, req.Value)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	h.respondMutation(c, sess, rev)
}

// AppendEntry 在列表末尾追加一个空白元素。
func (h *DocumentHandler) AppendEntry(c *gin.Context) {
	var uri listURI
	if err := c.ShouldBindUri(&uri); err != nil {
		BadRequest(c, "unknown list")
		return
	}
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	index, rev, err := sess.Document.Append(cv.List(uri.List))
	if err != nil {
		h.mutationError(c, err)
		return
	}
	publish(c, h.Broker, documentEvent(sess.ID, rev))
	c.JSON(http.StatusCreated, gin.H{
		"index":    index,
		"revision": rev,
		"document": sess.Document.Snapshot(),
	})
}

// UpdateEntry 修改列表元素；skills 与 languages 忽略 field。
func (h *DocumentHandler) UpdateEntry(c *gin.Context) {
	var uri entryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		BadRequest(c, "invalid list or index")
		return
	}
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	rev, err := sess.Document.Update(cv.List(uri.List), uri.Index, req.Field, req.Value)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	h.respondMutation(c, sess, rev)
}

// RemoveEntry 删除列表元素；列表只剩一个元素时将其重置为空白。
func (h *DocumentHandler) RemoveEntry(c *gin.Context) {
	var uri entryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		BadRequest(c, "invalid list or index")
		return
	}
	sess, ok := loadSession(c, h.Sessions)
	if !ok {
		return
	}
	rev, err := sess.Document.Remove(cv.List(uri.List), uri.Index)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	h.respondMutation(c, sess, rev)
}

func (h *DocumentHandler) respondMutation(c *gin.Context, sess *session.Session, rev uint64) {
	publish(c, h.Broker, documentEvent(sess.ID, rev))
	c.JSON(http.StatusOK, gin.H{
		"revision": rev,
		"document": sess.Document.Snapshot(),
	})
}

func (h *DocumentHandler) mutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cv.ErrUnknownField),
		errors.Is(err, cv.ErrUnknownList),
		errors.Is(err, cv.ErrIndexOutOfRange):
		BadRequest(c, err.Error())
	default:
		middleware.LoggerFromContext(c).Error("document mutation failed", slog.Any("error", err))
		Internal(c, "failed to update document")
	}
}

func documentEvent(sessionID string, rev uint64) notify.Message {
	return notify.Message{
		Type:      notify.TypeDocument,
		Status:    notify.StatusUpdated,
		SessionID: sessionID,
		Revision:  rev,
	}
}
