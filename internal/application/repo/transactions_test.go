package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
)

// uowDB имитирует pkg/db: замыкание WithinTransaction решает commit или
// rollback по возвращённой ошибке, запросы вне транзакции запрещены.
// Каждый INSERT распознаётся по своему SQL и может быть сломан по отдельности.
type uowDB struct {
	inTx       bool
	committed  bool
	rolledBack bool

	orderErr  error
	statusErr error
	stageErr  error

	orderID   uuid.UUID
	now       time.Time
	stageArgs []any
}

func newUowDB(t *testing.T) *uowDB {
	t.Helper()
	return &uowDB{
		orderID: uuid.Must(uuid.NewV4()),
		now:     time.Now().UTC(),
	}
}

func (d *uowDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	d.inTx = true
	err := fn(ctx)
	d.inTx = false
	if err != nil {
		d.rolledBack = true
		return err
	}
	d.committed = true
	return nil
}

func (d *uowDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if !d.inTx {
		return fakeRow{scanFn: func(...any) error {
			return errors.New("запрос вне транзакции")
		}}
	}

	switch sql {
	case createOrderSQL:
		if d.orderErr != nil {
			return errRow(d.orderErr)
		}
		return fakeRow{scanFn: func(dest ...any) error {
			*(dest[0].(*uuid.UUID)) = d.orderID
			*(dest[1].(*time.Time)) = d.now
			return nil
		}}
	case createOrderStatusSQL:
		if d.statusErr != nil {
			return errRow(d.statusErr)
		}
		return fakeRow{scanFn: func(dest ...any) error {
			*(dest[0].(*time.Time)) = d.now
			return nil
		}}
	case stageOutboxSQL:
		d.stageArgs = args
		if d.stageErr != nil {
			return errRow(d.stageErr)
		}
		return fakeRow{scanFn: func(dest ...any) error {
			*(dest[0].(*int64)) = 1
			*(dest[1].(*time.Time)) = d.now
			*(dest[2].(*time.Time)) = d.now
			return nil
		}}
	default:
		return errRow(errors.New("неожиданный запрос: " + sql))
	}
}

func (d *uowDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected Exec")
}

func (d *uowDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (d *uowDB) Close() {}

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scanFn(dest...) }

func errRow(err error) fakeRow {
	return fakeRow{scanFn: func(...any) error { return err }}
}

func newUowTransactions(d *uowDB) *TransactionsImpl {
	logger := zap.NewNop().Sugar()
	return NewTransactions(NewRepo(d, logger), logger)
}

var uowItems = []entity.Item{
	{ID: "sku-1", Name: "чай", Price: "10.00"},
	{ID: "sku-2", Name: "кофе", Price: "10.00"},
	{ID: "sku-3", Name: "какао", Price: "11.50"},
}

func TestCreateOrderUnitOfWorkCommits(t *testing.T) {
	d := newUowDB(t)
	tx := newUowTransactions(d)

	order, err := tx.CreateOrder(context.Background(), "user-1", uowItems, 3150)
	require.NoError(t, err)

	assert.True(t, d.committed)
	assert.False(t, d.rolledBack)
	assert.Equal(t, d.orderID, order.ID)
	assert.Equal(t, "31.50", order.Amount)
	assert.Equal(t, entity.OrderNew, order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, entity.OrderNew, order.StatusHistory[0].Status)

	// outbox-строка застейджена в той же транзакции с тем же aggregate_id
	require.Len(t, d.stageArgs, 5)
	assert.Equal(t, d.orderID, d.stageArgs[0])
	assert.Equal(t, entity.AggregateOrder, d.stageArgs[1])
	assert.Equal(t, entity.EventOrderCreated, d.stageArgs[2])
	assert.Equal(t, string(entity.OutboxPending), d.stageArgs[4])

	// payload — полный снапшот заказа
	var event entity.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(d.stageArgs[3].([]byte), &event))
	assert.Equal(t, d.orderID, event.OrderID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "31.50", event.Amount)
	assert.Equal(t, entity.OrderNew, event.Status)
	assert.Equal(t, uowItems, event.Items)
}

// Заказ вставился, но stage outbox упал: вся транзакция откатывается,
// заказа без outbox-строки не существует.
func TestCreateOrderRollsBackWhenStageFails(t *testing.T) {
	d := newUowDB(t)
	d.stageErr = errors.New("insert outbox failed")
	tx := newUowTransactions(d)

	order, err := tx.CreateOrder(context.Background(), "user-1", uowItems, 3150)
	require.ErrorIs(t, err, d.stageErr)
	assert.Nil(t, order)
	assert.True(t, d.rolledBack)
	assert.False(t, d.committed)
}

func TestCreateOrderRollsBackWhenOrderInsertFails(t *testing.T) {
	d := newUowDB(t)
	d.orderErr = errors.New("insert order failed")
	tx := newUowTransactions(d)

	order, err := tx.CreateOrder(context.Background(), "user-1", uowItems, 3150)
	require.ErrorIs(t, err, d.orderErr)
	assert.Nil(t, order)
	assert.True(t, d.rolledBack)
	assert.False(t, d.committed)
	assert.Nil(t, d.stageArgs, "до outbox дело не дошло")
}

func TestCreateOrderRollsBackWhenStatusInsertFails(t *testing.T) {
	d := newUowDB(t)
	d.statusErr = errors.New("insert status failed")
	tx := newUowTransactions(d)

	order, err := tx.CreateOrder(context.Background(), "user-1", uowItems, 3150)
	require.ErrorIs(t, err, d.statusErr)
	assert.Nil(t, order)
	assert.True(t, d.rolledBack)
	assert.Nil(t, d.stageArgs)
}
