package cv

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/document.schema.json
var documentSchema []byte

// ErrInvalidDocument 表示导入的 JSON 不符合文档 schema。
var ErrInvalidDocument = errors.New("invalid document")

var schemaLoader = gojsonschema.NewBytesLoader(documentSchema)

// ParseJSON 按 schema 校验 JSON 并解码为文档快照，缺失或为空的列表会被补齐为一个空白元素。
func ParseJSON(data []byte) (Snapshot, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	doc := Blank()
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
