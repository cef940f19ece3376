package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvBuilder/internal/errcode"
	"cvBuilder/internal/export"
)

// exportFailedMessage 是所有导出失败共用的对外提示。
const exportFailedMessage = "pdf export failed"

func Error(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.InvalidInput, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.NotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, errcode.ExportBusy, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, errcode.SystemError, msg) }

// exportErrorCode 将导出失败映射为错误码。
func exportErrorCode(err error) int {
	if errors.Is(err, export.ErrExportInProgress) {
		return errcode.ExportBusy
	}
	stage, ok := export.StageOf(err)
	if !ok {
		return errcode.SystemError
	}
	switch stage {
	case export.StageCapture:
		return errcode.CaptureFailure
	case export.StageEncode:
		return errcode.EncodingFailure
	case export.StageAssemble:
		return errcode.AssemblyFailure
	default:
		return errcode.SystemError
	}
}

func ExportFailed(c *gin.Context, err error) {
	Error(c, http.StatusInternalServerError, exportErrorCode(err), exportFailedMessage)
}
