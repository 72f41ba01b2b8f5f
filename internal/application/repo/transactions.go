package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	"github.com/edu-k3scluster-tech/online-store/pkg/config"
)

// Transactions собирает несколько записей в один unit of work:
// всё внутри WithinTransaction коммитится или откатывается вместе.
type Transactions interface {
	CreateOrder(ctx context.Context, userID string, items []entity.Item, amountCents int64) (*entity.Order, error)
	ClaimOutbox(ctx context.Context, c config.RelayConfig, workerToken uuid.UUID) ([]entity.OutboxMessage, error)
}

type TransactionsImpl struct {
	repo   *RepoImpl
	logger *zap.SugaredLogger
}

func NewTransactions(repo *RepoImpl, logger *zap.SugaredLogger) *TransactionsImpl {
	return &TransactionsImpl{repo: repo, logger: logger}
}

// CreateOrder атомарно пишет заказ, первую запись истории статусов и outbox-сообщение.
// Нет пути, на котором заказ сохранился бы без outbox-строки или наоборот:
// любая ошибка внутри замыкания откатывает все три вставки.
func (t *TransactionsImpl) CreateOrder(ctx context.Context, userID string, items []entity.Item, amountCents int64) (*entity.Order, error) {
	var order *entity.Order

	err := t.repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = t.repo.CreateOrder(ctx, userID, items, amountCents, entity.OrderNew)
		if err != nil {
			t.logger.Errorf("[user: %s] insert order failed: %v", userID, err)
			return err
		}

		payload, err := json.Marshal(entity.OrderCreatedEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Amount:    order.Amount,
			Status:    order.Status,
			Items:     order.Items,
			CreatedAt: order.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal order snapshot: %w", err)
		}

		msg := entity.OutboxMessage{
			AggregateID:   order.ID,
			AggregateType: entity.AggregateOrder,
			EventType:     entity.EventOrderCreated,
			Payload:       payload,
			State:         entity.OutboxPending,
		}

		if err = t.repo.StageOutbox(ctx, &msg); err != nil {
			t.logger.Errorf("[order: %s] insert outbox failed: %v", order.ID, err)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (t *TransactionsImpl) ClaimOutbox(ctx context.Context, c config.RelayConfig, workerToken uuid.UUID) ([]entity.OutboxMessage, error) {
	var msgs []entity.OutboxMessage
	err := t.repo.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		msgs, err = t.repo.ClaimOutboxBatch(txCtx, workerToken, c.Lease, c.BatchSize)
		return err
	})
	if err != nil {
		t.logger.Errorw("claim outbox batch failed", "err", err)
		return nil, err
	}
	return msgs, nil
}
