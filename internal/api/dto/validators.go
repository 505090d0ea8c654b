package dto

import (
	"instagen/internal/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册自定义 binding 规则
//   - posttype: Post / Carousel / Reel / Mixed (大小写不敏感)
//   - notblank: 去除空白后非空
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("posttype", validatePostType); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", validateNotBlank)
}

func validatePostType(fl validator.FieldLevel) bool {
	_, err := model.ParsePostType(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
