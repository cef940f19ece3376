package export

import (
	"errors"
	"fmt"
)

// Stage 标识导出流水线中的可失败阶段。
type Stage string

const (
	StageCapture  Stage = "capture"
	StageEncode   Stage = "encode"
	StageAssemble Stage = "assemble"
)

var (
	// ErrExportInProgress 表示同一画布上已有导出在执行。
	ErrExportInProgress = errors.New("export already in progress")
	// ErrUnreadableImage 表示画布中的图片无法被截取（跨域或加载失败）。
	ErrUnreadableImage = errors.New("image source could not be captured")
	// ErrSurfaceNotReady 表示画布缺少截图根元素或尚未完成布局。
	ErrSurfaceNotReady = errors.New("surface not ready")
)

// Error 是流水线边界上返回的失败，携带失败阶段。
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf 返回错误对应的失败阶段。
func StageOf(err error) (Stage, bool) {
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Stage, true
	}
	return "", false
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}
