package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate - singleton экземпляр валидатора для переиспользования
	Validate *validator.Validate

	// тот же формат, что у строгого денежного парсера: максимум 2 знака
	// после запятой, без знака минус (цены не бывают отрицательными)
	reDecimal2 = regexp.MustCompile(`^\s*\+?(\d+)(?:[.,](\d{1,2}))?\s*$`)
)

func init() {
	Validate = validator.New()

	// Регистрируем кастомные валидаторы
	_ = Validate.RegisterValidation("decimal2", validateDecimal2)
}

// validateDecimal2 проверяет, что строка — неотрицательное десятичное число
// с масштабом не более 2 (формат NUMERIC(18,2))
func validateDecimal2(fl validator.FieldLevel) bool {
	return reDecimal2.MatchString(fl.Field().String())
}
