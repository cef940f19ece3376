package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cvBuilder/internal/cv"
)

var (
	registerValidationOnce sync.Once
	registerValidationErr  error
)

// registerValidations 在 gin 的校验引擎上注册自定义规则，只执行一次。
func registerValidations() error {
	registerValidationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerValidationErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerValidationErr = registerCVValidations(v)
	})
	return registerValidationErr
}

// registerCVValidations 注册 cvlist：要求值是已知的列表名。
func registerCVValidations(v *validator.Validate) error {
	err := v.RegisterValidation("cvlist", func(fl validator.FieldLevel) bool {
		_, err := cv.ParseList(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("register cvlist validation: %w", err)
	}
	return nil
}

// sessionURI 绑定 /sessions/:id。
type sessionURI struct {
	ID string `uri:"id" binding:"required"`
}

// listURI 绑定 /sessions/:id/lists/:list。
type listURI struct {
	ID   string `uri:"id" binding:"required"`
	List string `uri:"list" binding:"required,cvlist"`
}

// entryURI 绑定 /sessions/:id/lists/:list/:index。
type entryURI struct {
	ID    string `uri:"id" binding:"required"`
	List  string `uri:"list" binding:"required,cvlist"`
	Index int    `uri:"index" binding:"min=0"`
}

// fieldRequest 是单字段修改的请求体，value 允许为空（清空字段）。
type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}
