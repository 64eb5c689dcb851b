package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("yyyymmdd", func(fl validator.FieldLevel) bool {
		return ValidateDate(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateStruct 校验带 validate 标签的文档，错误信息列出字段和规则
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateAmount 验证金额（不能为负且不超过上限）
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative, got %f", amount)
	}
	if amount >= 10_000_000_000 {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateUsername 用户名：3-32 位字母、数字、下划线或点
func ValidateUsername(name string) error {
	if len(name) < 3 || len(name) > 32 {
		return fmt.Errorf("username must be 3-32 characters")
	}
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_', ch == '.':
		default:
			return fmt.Errorf("username may only contain letters, digits, '_' and '.'")
		}
	}
	return nil
}

// ValidatePassword 密码需 8-64 位，且包含字母和数字
func ValidatePassword(pwd string) error {
	if len(pwd) < 8 || len(pwd) > 64 {
		return fmt.Errorf("password must be 8-64 characters")
	}
	var hasLetter, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z':
			hasLetter = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain letters and digits")
	}
	return nil
}
