package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/appers"
	"github.com/edu-k3scluster-tech/online-store/internal/application/common"
	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	use_cases "github.com/edu-k3scluster-tech/online-store/internal/application/use-cases"
	"github.com/edu-k3scluster-tech/online-store/pkg/validator"
)

type Handler interface {
	CreateOrder(c *fiber.Ctx) error
	GetOrderByID(c *fiber.Ctx) error
	HealthCheck(c *fiber.Ctx) error
}

type HandlerImpl struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewOrderHandler(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *HandlerImpl {
	return &HandlerImpl{
		usecase: usecase,
		logger:  logger,
	}
}

// formatValidationErrors форматирует ошибки валидации в понятный формат для клиента
func formatValidationErrors(err error) fiber.Map {
	var errors []string
	if validationErrors, ok := err.(playgroundvalidator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			var message string
			switch tag {
			case "required":
				message = fmt.Sprintf("поле '%s' обязательно для заполнения", field)
			case "min":
				message = fmt.Sprintf("поле '%s' должно содержать минимум %s элементов/символов", field, e.Param())
			case "max":
				message = fmt.Sprintf("поле '%s' должно содержать максимум %s символов", field, e.Param())
			case "decimal2":
				message = fmt.Sprintf("поле '%s' должно быть неотрицательным числом с максимум 2 знаками после запятой (например, 10.50)", field)
			default:
				message = fmt.Sprintf("поле '%s' не прошло валидацию: %s", field, tag)
			}
			errors = append(errors, message)
		}
	} else {
		errors = append(errors, err.Error())
	}
	return fiber.Map{
		"error":   "validation failed",
		"details": errors,
	}
}

// HealthCheck godoc
// @Summary     Проверка состояния сервиса
// @Description Проверяет доступность базы данных PostgreSQL и Kafka. Возвращает детальную информацию о состоянии каждого компонента.
// @Accept      json
// @Produce     json
// @Success     200   {object} entity.HealthCheckResponse "Все сервисы доступны"
// @Failure     503   {object} entity.HealthCheckResponse "Один или несколько сервисов недоступны"
// @tags        Health
// @Router      /health [get]
func (h *HandlerImpl) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	dbHealthy, kafkaHealthy, _ := h.usecase.HealthCheck(ctx)

	health := fiber.Map{
		"status":  dbHealthy && kafkaHealthy,
		"message": "success",
		"version": common.Version,
		"checks": fiber.Map{
			"database": fiber.Map{
				"status": dbHealthy,
				"type":   "postgresql",
			},
			"kafka": fiber.Map{
				"status": kafkaHealthy,
				"type":   "kafka",
			},
		},
	}
	if !dbHealthy {
		health["checks"].(fiber.Map)["database"].(fiber.Map)["error"] = "Database connection failed"
		health["message"] = "Some services are unavailable"
	}
	if !kafkaHealthy {
		health["checks"].(fiber.Map)["kafka"].(fiber.Map)["error"] = "Kafka connection failed"
		health["message"] = "Some services are unavailable"
	}

	if !dbHealthy || !kafkaHealthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}

	return c.Status(fiber.StatusOK).JSON(health)
}

// CreateOrder godoc
// @Summary     Создание заказа
// @Description Создает заказ, считает сумму по позициям и атомарно ставит событие order_created в outbox
// @Accept      json
// @Produce     json
// @Param       body  body     entity.CreateOrderRequest  true  "Данные заказа"
// @Success     201   {object} entity.Order
// @Failure     400
// @Failure     500
// @Failure     503
// @tags        Order
// @Router      /orders [post]
func (h *HandlerImpl) CreateOrder(c *fiber.Ctx) error {
	var req entity.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Errorf("error parsing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// Валидация структуры: ошибки валидации отклоняются до любой записи
	if err := validator.Validate.Struct(&req); err != nil {
		h.logger.Warnf("validation error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(formatValidationErrors(err))
	}

	order, err := h.usecase.CreateOrder(c.Context(), req)
	switch {
	case errors.Is(err, appers.ErrFormat), errors.Is(err, appers.ErrScale), errors.Is(err, appers.ErrPrecision):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return appers.SanitizeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetOrderByID godoc
// @Summary     Получение заказа
// @Description Возвращает заказ с полной историей статусов
// @Produce     json
// @Param       id   path     string  true  "ID заказа (uuid)"
// @Success     200  {object} entity.Order
// @Failure     400
// @Failure     404
// @Failure     500
// @tags        Order
// @Router      /orders/{id} [get]
func (h *HandlerImpl) GetOrderByID(c *fiber.Ctx) error {
	id, err := uuid.FromString(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id, expected uuid",
		})
	}

	order, err := h.usecase.GetOrder(c.Context(), id)
	if err != nil {
		return appers.SanitizeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(order)
}
