package entity

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

type OutboxState string

const (
	OutboxPending   OutboxState = "PENDING"
	OutboxClaimed   OutboxState = "CLAIMED"
	OutboxPublished OutboxState = "PUBLISHED" // терминальный
	OutboxFailed    OutboxState = "FAILED"    // терминальный, требует вмешательства оператора
)

type OutboxAggregate string

const (
	AggregateOrder OutboxAggregate = "order"
)

type OutboxEventType string

const (
	EventOrderCreated OutboxEventType = "order_created"
)

// OutboxMessage строка таблицы outbox.
// Жизненный цикл: PENDING -> CLAIMED -> PUBLISHED, либо CLAIMED -> PENDING
// (повтор после backoff), либо CLAIMED -> FAILED когда attempts исчерпаны.
// Attempts увеличивается ровно один раз на каждый цикл claim-publish.
type OutboxMessage struct {
	ID            int64           `db:"id"`
	AggregateID   uuid.UUID       `db:"aggregate_id"` // FK -> orders.id
	AggregateType OutboxAggregate `db:"aggregate_type"`
	EventType     OutboxEventType `db:"event_type"`
	Payload       json.RawMessage `db:"payload"` // JSONB для Kafka
	State         OutboxState     `db:"state"`
	Attempts      int             `db:"attempts"`
	ClaimedBy     *uuid.UUID      `db:"claimed_by"` // токен воркера, NULL пока не захвачено
	ClaimedAt     *time.Time      `db:"claimed_at"`
	PublishedAt   *time.Time      `db:"published_at"`
	NextAttemptAt time.Time       `db:"next_attempt_at"`
	CreatedAt     time.Time       `db:"created_at"`
}
