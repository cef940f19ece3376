package export

import (
	"strings"
	"unicode"
)

const (
	// DefaultBaseName 用于姓名为空时的文件名。
	DefaultBaseName = "CV"
	// Extension 是导出文件的固定扩展名。
	Extension = ".pdf"
)

var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

// FileName 由姓名生成导出文件名：`<name>.pdf`，姓名为空时为 `CV.pdf`。
// 路径分隔符被替换为 '-'，控制字符被移除，结果永远不是路径。
func FileName(subject string) string {
	base := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, subject)
	base = pathSeparators.Replace(base)
	if base == "" {
		base = DefaultBaseName
	}
	return base + Extension
}
