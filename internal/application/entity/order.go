package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Item позиция заказа. Цена приходит строкой и парсится строгим
// десятичным парсером (максимум 2 знака после запятой, без округления).
type Item struct {
	ID    string `json:"id" validate:"required,min=1,max=100"`
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Price string `json:"price" validate:"required,decimal2"`
}

type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

type Order struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id"`
	Items         []Item        `json:"items"`
	Amount        string        `json:"amount"` // NUMERIC(18,2) каноничной строкой, напр. "31.50"
	Status        OrderStatus   `json:"status"`
	StatusHistory []StatusEntry `json:"status_history"`
	CreatedAt     time.Time     `json:"created_at"`
}

type CreateOrderRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=100"`
	Items  []Item `json:"items" validate:"required,min=1,dive"`
}

// OrderCreatedEvent снапшот заказа, который уходит в outbox и далее в Kafka.
type OrderCreatedEvent struct {
	OrderID   uuid.UUID   `json:"order_id"`
	UserID    string      `json:"user_id"`
	Amount    string      `json:"amount"`
	Status    OrderStatus `json:"status"`
	Items     []Item      `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}
