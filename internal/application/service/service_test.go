package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/appers"
	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	"github.com/edu-k3scluster-tech/online-store/pkg/config"
)

// fakeTransactions записывает аргументы unit of work и возвращает заготовленный ответ.
type fakeTransactions struct {
	calls     int
	gotUserID string
	gotItems  []entity.Item
	gotCents  int64

	order *entity.Order
	err   error
}

func (f *fakeTransactions) CreateOrder(_ context.Context, userID string, items []entity.Item, amountCents int64) (*entity.Order, error) {
	f.calls++
	f.gotUserID = userID
	f.gotItems = items
	f.gotCents = amountCents
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeTransactions) ClaimOutbox(context.Context, config.RelayConfig, uuid.UUID) ([]entity.OutboxMessage, error) {
	return nil, nil
}

type fakeProducer struct {
	healthErr error
}

func (f *fakeProducer) ProduceMessage(context.Context, int64, []byte) error { return nil }
func (f *fakeProducer) HealthCheck(context.Context) error                   { return f.healthErr }

func newTestService(t *testing.T, tx *fakeTransactions) *ServiceImpl {
	t.Helper()
	return NewService(newFakeOutboxRepo(), tx, &fakeProducer{}, zap.NewNop().Sugar(), &config.RelayConfig{
		Workers:     1,
		BatchSize:   10,
		Lease:       30 * time.Second,
		PollPeriod:  10 * time.Millisecond,
		MaxAttempts: 3,
	}, nil)
}

func TestCreateOrderComputesExactAmount(t *testing.T) {
	orderID, err := uuid.NewV4()
	require.NoError(t, err)

	items := []entity.Item{
		{ID: "sku-1", Name: "чай", Price: "10.00"},
		{ID: "sku-2", Name: "кофе", Price: "10.00"},
		{ID: "sku-3", Name: "какао", Price: "11.50"},
	}
	tx := &fakeTransactions{order: &entity.Order{
		ID:     orderID,
		UserID: "user-1",
		Items:  items,
		Amount: "31.50",
		Status: entity.OrderNew,
	}}
	s := newTestService(t, tx)

	order, err := s.CreateOrder(context.Background(), &entity.CreateOrderRequest{UserID: "user-1", Items: items})
	require.NoError(t, err)

	// 10.00 + 10.00 + 11.50 = ровно 3150 копеек
	assert.Equal(t, int64(3150), tx.gotCents)
	assert.Equal(t, "user-1", tx.gotUserID)
	assert.Equal(t, items, tx.gotItems)
	assert.Equal(t, "31.50", order.Amount)
	assert.Equal(t, entity.OrderNew, order.Status)
}

func TestCreateOrderEmptyItems(t *testing.T) {
	tx := &fakeTransactions{}
	s := newTestService(t, tx)

	_, err := s.CreateOrder(context.Background(), &entity.CreateOrderRequest{UserID: "user-1"})
	require.ErrorIs(t, err, appers.ErrEmptyItems)
	assert.Zero(t, tx.calls, "транзакция не должна начинаться")
}

func TestCreateOrderRejectsBadPrices(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		wantErr error
	}{
		{name: "three fractional digits", price: "1.999", wantErr: appers.ErrScale},
		{name: "not a number", price: "дорого", wantErr: appers.ErrFormat},
		{name: "negative", price: "-5.00", wantErr: appers.ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &fakeTransactions{}
			s := newTestService(t, tx)

			_, err := s.CreateOrder(context.Background(), &entity.CreateOrderRequest{
				UserID: "user-1",
				Items:  []entity.Item{{ID: "sku-1", Name: "товар", Price: tt.price}},
			})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, tx.calls)
		})
	}
}

func TestCreateOrderPropagatesStorageError(t *testing.T) {
	storageErr := errors.New("connection reset")
	tx := &fakeTransactions{err: storageErr}
	s := newTestService(t, tx)

	order, err := s.CreateOrder(context.Background(), &entity.CreateOrderRequest{
		UserID: "user-1",
		Items:  []entity.Item{{ID: "sku-1", Name: "товар", Price: "10.00"}},
	})
	require.ErrorIs(t, err, storageErr)
	assert.Nil(t, order)
}

func TestHealthCheck(t *testing.T) {
	repoErr := errors.New("db down")
	kafkaErr := errors.New("kafka down")

	tests := []struct {
		name      string
		dbErr     error
		kafkaErr  error
		wantDB    bool
		wantKafka bool
		wantErr   bool
	}{
		{name: "all healthy", wantDB: true, wantKafka: true},
		{name: "db down", dbErr: repoErr, wantKafka: true},
		{name: "kafka down", kafkaErr: kafkaErr, wantDB: true},
		{name: "all down", dbErr: repoErr, kafkaErr: kafkaErr, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeOutboxRepo()
			r.healthErr = tt.dbErr
			s := NewService(r, &fakeTransactions{}, &fakeProducer{healthErr: tt.kafkaErr}, zap.NewNop().Sugar(), &config.RelayConfig{}, nil)

			db, kafka, err := s.HealthCheck(context.Background())
			assert.Equal(t, tt.wantDB, db)
			assert.Equal(t, tt.wantKafka, kafka)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
