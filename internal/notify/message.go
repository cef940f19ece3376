package notify

import "fmt"

// 推送给前端的事件类型。
const (
	TypeDocument = "document"
	TypeExport   = "export"
)

// 导出事件的状态。
const (
	StatusUpdated   = "updated"
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Message 是统一的 WebSocket 消息协议。
// 字段名与前端解析保持一致。
type Message struct {
	Type          string `json:"type"`
	Status        string `json:"status"`
	SessionID     string `json:"session_id"`
	Revision      uint64 `json:"revision"`
	CorrelationID string `json:"correlation_id,omitempty"`
	FileName      string `json:"file_name,omitempty"`
	ErrorCode     int    `json:"error_code,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// Channel 返回会话对应的频道名。
func Channel(sessionID string) string {
	return fmt.Sprintf("cv_session:%s", sessionID)
}
