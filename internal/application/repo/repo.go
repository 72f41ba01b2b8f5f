package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/appers"
	"github.com/edu-k3scluster-tech/online-store/internal/application/common"
	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	"github.com/edu-k3scluster-tech/online-store/pkg/db"
)

const defaultPurgeDays = 30

type Repo interface {
	CreateOrder(ctx context.Context, userID string, items []entity.Item, amountCents int64, status entity.OrderStatus) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	StageOutbox(ctx context.Context, m *entity.OutboxMessage) error
	ClaimOutboxBatch(ctx context.Context, workerToken uuid.UUID, lease time.Duration, limit int) ([]entity.OutboxMessage, error)
	MarkPublished(ctx context.Context, outboxID int64) error
	MarkFailedWithBackoff(ctx context.Context, outboxID int64, nextAttemptAt time.Time) error
	MarkPoison(ctx context.Context, outboxID int64) error
	PurgePublishedOutbox(ctx context.Context, days *int) (int64, error)

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	db     db.DB
	logger *zap.SugaredLogger
}

func NewRepo(db db.DB, logger *zap.SugaredLogger) *RepoImpl {
	return &RepoImpl{db: db, logger: logger}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	// Проверяем доступность БД через простой запрос
	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// CreateOrder вставляет строку заказа и первую строку истории статусов.
// Транзакцией не управляет: границы владеет вызывающий (transactions.go),
// обе вставки идут через tx из контекста.
func (r *RepoImpl) CreateOrder(ctx context.Context, userID string, items []entity.Item, amountCents int64, status entity.OrderStatus) (*entity.Order, error) {
	r.logger.Debugf("[user: %s] start inserting order into DB", userID)

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal order items: %w", err)
	}

	amount := common.FormatAmount(amountCents)

	var (
		orderID   uuid.UUID
		createdAt time.Time
	)
	if err := r.db.QueryRow(ctx, createOrderSQL, userID, itemsJSON, amount).Scan(&orderID, &createdAt); err != nil {
		r.logger.Errorf("[user: %s] error inserting order into DB: %v", userID, err)
		return nil, fmt.Errorf("insert order: %w", err)
	}

	var statusCreatedAt time.Time
	if err := r.db.QueryRow(ctx, createOrderStatusSQL, orderID, string(status)).Scan(&statusCreatedAt); err != nil {
		r.logger.Errorf("[order: %s] error inserting order status into DB: %v", orderID, err)
		return nil, fmt.Errorf("insert order status: %w", err)
	}

	r.logger.Debugf("[order: %s] inserted into DB successfully", orderID)

	return &entity.Order{
		ID:     orderID,
		UserID: userID,
		Items:  items,
		Amount: amount,
		Status: status,
		StatusHistory: []entity.StatusEntry{
			{Status: status, CreatedAt: statusCreatedAt},
		},
		CreatedAt: createdAt,
	}, nil
}

func (r *RepoImpl) GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.logger.Debugf("[order: %s] start getting from DB", id)

	var (
		order     entity.Order
		itemsJSON []byte
	)
	err := r.db.QueryRow(ctx, getOrderSQL, id).Scan(
		&order.ID, &order.UserID, &itemsJSON, &order.Amount, &order.CreatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		r.logger.Warnf("[order: %s] not found in DB", id)
		return nil, appers.ErrOrderNotFound
	case err != nil:
		r.logger.Errorf("[order: %s] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	rows, err := r.db.Query(ctx, getOrderStatusesSQL, id)
	if err != nil {
		r.logger.Errorf("[order: %s] error getting statuses from DB: %v", id, err)
		return nil, fmt.Errorf("get order statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e entity.StatusEntry
		if err := rows.Scan(&e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order status: %w", err)
		}
		order.StatusHistory = append(order.StatusHistory, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order statuses rows err: %w", err)
	}

	// история append-only, текущий статус — последняя запись
	if n := len(order.StatusHistory); n > 0 {
		order.Status = order.StatusHistory[n-1].Status
	}

	r.logger.Debugf("[order: %s] got from DB successfully", id)
	return &order, nil
}
