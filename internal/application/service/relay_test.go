package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	"github.com/edu-k3scluster-tech/online-store/pkg/config"
)

// fakeOutboxRepo держит outbox в памяти и повторяет переходы состояний
// реальных SQL-запросов: MarkPublished идемпотентен (срабатывает только из
// CLAIMED), каждый mark-* увеличивает attempts ровно на единицу.
type fakeOutboxRepo struct {
	mu        sync.Mutex
	msgs      map[int64]*entity.OutboxMessage
	healthErr error
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{msgs: make(map[int64]*entity.OutboxMessage)}
}

func (f *fakeOutboxRepo) add(id int64, attempts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	f.msgs[id] = &entity.OutboxMessage{
		ID:            id,
		AggregateID:   uuid.Must(uuid.NewV4()),
		AggregateType: entity.AggregateOrder,
		EventType:     entity.EventOrderCreated,
		Payload:       []byte(`{"order_id":"x"}`),
		State:         entity.OutboxClaimed,
		Attempts:      attempts,
		ClaimedBy:     &token,
		ClaimedAt:     &now,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
}

func (f *fakeOutboxRepo) get(id int64) entity.OutboxMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.msgs[id]
}

func (f *fakeOutboxRepo) MarkPublished(_ context.Context, outboxID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[outboxID]
	if !ok || m.State != entity.OutboxClaimed {
		// 0 строк: уже опубликовано или перехвачено — no-op
		return nil
	}
	now := time.Now().UTC()
	m.State = entity.OutboxPublished
	m.PublishedAt = &now
	m.Attempts++
	return nil
}

func (f *fakeOutboxRepo) MarkFailedWithBackoff(_ context.Context, outboxID int64, nextAttemptAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[outboxID]
	if !ok || m.State != entity.OutboxClaimed {
		return nil
	}
	m.State = entity.OutboxPending
	m.ClaimedBy = nil
	m.ClaimedAt = nil
	m.Attempts++
	m.NextAttemptAt = nextAttemptAt
	return nil
}

func (f *fakeOutboxRepo) MarkPoison(_ context.Context, outboxID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[outboxID]
	if !ok || m.State != entity.OutboxClaimed {
		return nil
	}
	m.State = entity.OutboxFailed
	m.Attempts++
	return nil
}

func (f *fakeOutboxRepo) CreateOrder(context.Context, string, []entity.Item, int64, entity.OrderStatus) (*entity.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOutboxRepo) GetOrderByID(context.Context, uuid.UUID) (*entity.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOutboxRepo) StageOutbox(context.Context, *entity.OutboxMessage) error { return nil }

func (f *fakeOutboxRepo) ClaimOutboxBatch(context.Context, uuid.UUID, time.Duration, int) ([]entity.OutboxMessage, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) PurgePublishedOutbox(context.Context, *int) (int64, error) { return 0, nil }

func (f *fakeOutboxRepo) HealthCheck(context.Context) error { return f.healthErr }

// flakyProducer падает первые failures вызовов, дальше отвечает успехом.
type flakyProducer struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *flakyProducer) ProduceMessage(_ context.Context, _ int64, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	return nil
}

func (p *flakyProducer) HealthCheck(context.Context) error { return nil }

func newRelayService(r *fakeOutboxRepo, tx *fakeTransactions, p *flakyProducer, maxAttempts int) *ServiceImpl {
	return NewService(r, tx, p, zap.NewNop().Sugar(), &config.RelayConfig{
		Workers:     2,
		BatchSize:   4,
		Lease:       30 * time.Second,
		PollPeriod:  5 * time.Millisecond,
		MaxAttempts: maxAttempts,
	}, nil)
}

func TestProcessOnePublishes(t *testing.T) {
	r := newFakeOutboxRepo()
	r.add(1, 0)
	p := &flakyProducer{}
	s := newRelayService(r, &fakeTransactions{}, p, 3)

	s.ProcessOne(context.Background(), 0, r.get(1))

	m := r.get(1)
	assert.Equal(t, entity.OutboxPublished, m.State)
	assert.Equal(t, 1, m.Attempts)
	require.NotNil(t, m.PublishedAt)
	assert.Equal(t, 1, p.calls)
}

func TestProcessOneRetriesWithBackoff(t *testing.T) {
	r := newFakeOutboxRepo()
	r.add(1, 0)
	p := &flakyProducer{failures: 100}
	s := newRelayService(r, &fakeTransactions{}, p, 3)

	before := time.Now().UTC()
	s.ProcessOne(context.Background(), 0, r.get(1))

	m := r.get(1)
	assert.Equal(t, entity.OutboxPending, m.State)
	assert.Equal(t, 1, m.Attempts)
	assert.Nil(t, m.ClaimedBy)
	// backoff откладывает следующую попытку в будущее
	assert.True(t, m.NextAttemptAt.After(before))
}

func TestProcessOnePoisonsAfterMaxAttempts(t *testing.T) {
	r := newFakeOutboxRepo()
	// третий цикл claim-publish при maxAttempts=3
	r.add(1, 2)
	p := &flakyProducer{failures: 100}
	s := newRelayService(r, &fakeTransactions{}, p, 3)

	s.ProcessOne(context.Background(), 0, r.get(1))

	m := r.get(1)
	assert.Equal(t, entity.OutboxFailed, m.State)
	assert.Equal(t, 3, m.Attempts)
}

// Два сбоя публикации, затем успех: сообщение проходит
// CLAIMED -> PENDING -> CLAIMED -> PENDING -> CLAIMED -> PUBLISHED
// и не становится ядовитым, пока лимит попыток не исчерпан.
func TestProcessOneEventuallyPublishes(t *testing.T) {
	r := newFakeOutboxRepo()
	r.add(1, 0)
	p := &flakyProducer{failures: 2}
	s := newRelayService(r, &fakeTransactions{}, p, 5)

	for cycle := 0; cycle < 3; cycle++ {
		m := r.get(1)
		// повторный claim следующего цикла
		m.State = entity.OutboxClaimed
		r.mu.Lock()
		r.msgs[1].State = entity.OutboxClaimed
		r.mu.Unlock()

		s.ProcessOne(context.Background(), 0, m)
	}

	m := r.get(1)
	assert.Equal(t, entity.OutboxPublished, m.State)
	assert.Equal(t, 3, m.Attempts)
	assert.Equal(t, 3, p.calls)
}

// Ошибка одного сообщения не мешает публикации остальных из пачки.
func TestProcessOneFailureIsIsolated(t *testing.T) {
	r := newFakeOutboxRepo()
	r.add(1, 0)
	r.add(2, 0)
	// первый вызов (ID 1) падает, второй (ID 2) проходит
	p := &flakyProducer{failures: 1}
	s := newRelayService(r, &fakeTransactions{}, p, 3)

	s.ProcessOne(context.Background(), 0, r.get(1))
	s.ProcessOne(context.Background(), 0, r.get(2))

	assert.Equal(t, entity.OutboxPending, r.get(1).State)
	assert.Equal(t, entity.OutboxPublished, r.get(2).State)
}

func TestMarkPublishedIsIdempotent(t *testing.T) {
	r := newFakeOutboxRepo()
	r.add(1, 0)

	require.NoError(t, r.MarkPublished(context.Background(), 1))
	require.NoError(t, r.MarkPublished(context.Background(), 1))

	m := r.get(1)
	assert.Equal(t, entity.OutboxPublished, m.State)
	assert.Equal(t, 1, m.Attempts, "повторный mark published не меняет attempts")
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	r := newFakeOutboxRepo()
	s := newRelayService(r, &fakeTransactions{}, &flakyProducer{}, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RelayRun(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay не остановился после отмены контекста")
	}
}
