package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edu-k3scluster-tech/online-store/internal/appers"
)

var (
	// допустимы: "123", "123.4", "123,45", "+0.99", "-10", пробелы по краям
	reDec = regexp.MustCompile(`^\s*([+-])?(\d+)(?:[.,](\d+))?\s*$`)

	// NUMERIC(18,2) -> максимум 16 цифр в целой части (с учётом 2 знаков после запятой)
	maxIntDigits = 16
	maxScale     = 2
)

// ParseAmount парсит строку в точное десятичное число и возвращает его в копейках.
// Масштаб не более 2, целая часть до 16 знаков. Ничего не округляет:
// если больше 2 знаков после запятой — вернёт ошибку.
// Суммы заказа считаются целочисленно, без плавающей точки.
func ParseAmount(s string) (int64, error) {
	m := reDec.FindStringSubmatch(s)
	if m == nil {
		return 0, appers.ErrFormat
	}
	sign := m[1]
	intPart := trimZeros(m[2])
	frac := m[3]

	if len(frac) > maxScale {
		return 0, appers.ErrScale
	}
	if len(intPart) > maxIntDigits {
		return 0, appers.ErrPrecision
	}

	if frac == "" {
		frac = "00"
	} else if len(frac) == 1 {
		frac += "0"
	}

	cents, err := strconv.ParseInt(intPart+frac, 10, 64)
	if err != nil {
		return 0, appers.ErrFormat
	}
	if sign == "-" {
		cents = -cents
	}

	return cents, nil
}

// FormatAmount возвращает каноничную строку с двумя знаками после запятой,
// совместимую с NUMERIC(18,2): 3150 -> "31.50".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
