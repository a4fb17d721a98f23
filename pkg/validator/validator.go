package validator

import (
	"calendarback/pkg/odata"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate - singleton экземпляр валидатора для переиспользования
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Регистрируем кастомные валидаторы
	_ = Validate.RegisterValidation("datetime_utc", validateDateTimeUTC)
	_ = Validate.RegisterValidation("notblank", validateNotBlank)
}

// validateDateTimeUTC принимает RFC3339 и ISO-8601 без зоны (считается UTC)
func validateDateTimeUTC(fl validator.FieldLevel) bool {
	dateStr := fl.Field().String()
	if dateStr == "" {
		return false
	}
	_, err := odata.ParseDateTime(dateStr)
	return err == nil
}

// validateNotBlank не пропускает строку из одних пробелов
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
