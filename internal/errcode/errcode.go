package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：请求方可修正的错误
// - 5xxx：系统错误，5001 起按导出阶段区分
const (
	OK              = 0
	InvalidInput    = 4000
	NotFound        = 4004
	ExportBusy      = 4009
	SystemError     = 5000
	CaptureFailure  = 5001
	EncodingFailure = 5002
	AssemblyFailure = 5003
)
