package util

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidateFutureDate 校验时间字段必须晚于当前时刻
// 用于奖励发放时的过期时间参数
func ValidateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return date.After(time.Now())
}
