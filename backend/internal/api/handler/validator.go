package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"campus-events/backend/internal/model"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding 校验引擎不是 validator.Validate")
	}
	if err := v.RegisterValidation("event_category", func(fl validator.FieldLevel) bool {
		return model.ValidCategory(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("event_state", func(fl validator.FieldLevel) bool {
		return model.ValidState(fl.Field().String())
	})
}
