package appers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Ошибки парсинга денежных строк (NUMERIC(18,2))
	ErrFormat    = errors.New("invalid decimal format")
	ErrScale     = errors.New("too many fractional digits (max 2)")
	ErrPrecision = errors.New("too many integer digits for NUMERIC(18,2)")
)

type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrOrderNotFound = ErrorResp{
		http.StatusNotFound,
		"заказ не найден",
	}
	ErrEmptyItems = ErrorResp{
		http.StatusBadRequest,
		"заказ должен содержать хотя бы одну позицию",
	}
	ErrNegativePrice = ErrorResp{
		http.StatusBadRequest,
		"цена позиции не может быть отрицательной",
	}
)

// IsIntegrityError нарушение целостности (SQLSTATE класс 23): ошибка логики
// или данных, повтор не поможет.
func IsIntegrityError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23"
}

// IsTransientError ошибка соединения или конкурентного доступа, операцию
// безопасно повторить целиком: класс 08 (connection exception), 40001
// (serialization failure), 40P01 (deadlock), сетевые таймауты и отмена контекста.
func IsTransientError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// SanitizeError переводит ошибку в HTTP-ответ: бизнес-ошибки несут свой код,
// транзиентные ошибки хранилища дают 503, остальное — общий 500 без деталей.
func SanitizeError(c *fiber.Ctx, err error) error {
	var errResp ErrorResp
	if ok := errors.As(err, &errResp); ok {
		return c.Status(errResp.StatusCode).JSON(fiber.Map{
			"message": errResp.StatusDesc,
		})
	}

	if IsTransientError(err) {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "хранилище временно недоступно, повторите запрос",
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"message": "внутренняя ошибка сервиса",
	})
}
