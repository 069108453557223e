package services

import (
	"errors"
	"eshop/apperror"
	"eshop/models"
	"fmt"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"reflect"
	"strings"
)

var validate = newValidator()

// 錯誤訊息使用json欄位名稱
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// 檢查輸入資料，失敗時回傳validation錯誤
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.Internal("validate input", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Namespace()
		if _, rest, found := strings.Cut(field, "."); found {
			field = rest
		}
		messages = append(messages, fmt.Sprintf("%s failed on %s", field, ruleName(fe)))
	}
	return apperror.Validation("invalid input: " + strings.Join(messages, ", "))
}

func ruleName(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// 將查詢錯誤轉換成not found或internal
func lookupError(err error, notFoundMessage string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(notFoundMessage)
	}
	return apperror.Internal("database error", err)
}

func checkID(id, message string) error {
	if !models.IsValidID(id) {
		return apperror.Validation(message)
	}
	return nil
}
