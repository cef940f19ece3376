package upload

import (
	"errors"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ErrMalicious 表示病毒扫描未通过。
var ErrMalicious = errors.New("malicious file detected")

// Scanner 在接收文件前检查其内容。
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 命令扫描上传内容。
type ClamdScanner struct {
	client *clamd.Clamd
}

// NewClamdScanner 创建扫描器，addr 形如 tcp://127.0.0.1:3310。
func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

// Scan 实现 Scanner。
func (s *ClamdScanner) Scan(r io.Reader) error {
	abortChan := make(chan bool)
	defer close(abortChan)

	results, err := s.client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	for result := range results {
		if result.Status != clamd.RES_OK {
			return fmt.Errorf("%w: %s", ErrMalicious, result.Description)
		}
	}
	return nil
}
