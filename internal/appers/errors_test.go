package appers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsIntegrityError(t *testing.T) {
	assert.True(t, IsIntegrityError(&pgconn.PgError{Code: "23505"})) // unique_violation
	assert.True(t, IsIntegrityError(&pgconn.PgError{Code: "23503"})) // foreign_key_violation
	assert.True(t, IsIntegrityError(fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "23514"})))

	assert.False(t, IsIntegrityError(&pgconn.PgError{Code: "08006"}))
	assert.False(t, IsIntegrityError(errors.New("boom")))
	assert.False(t, IsIntegrityError(nil))
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(&pgconn.PgError{Code: "08000"})) // connection exception
	assert.True(t, IsTransientError(&pgconn.PgError{Code: "08006"})) // connection failure
	assert.True(t, IsTransientError(&pgconn.PgError{Code: "40001"})) // serialization failure
	assert.True(t, IsTransientError(&pgconn.PgError{Code: "40P01"})) // deadlock
	assert.True(t, IsTransientError(context.DeadlineExceeded))
	assert.True(t, IsTransientError(fmt.Errorf("query: %w", &pgconn.PgError{Code: "40001"})))

	// нарушение целостности не транзиентно: повтор не поможет
	assert.False(t, IsTransientError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransientError(errors.New("boom")))
	assert.False(t, IsTransientError(nil))
}

func TestErrorRespIsError(t *testing.T) {
	var err error = ErrOrderNotFound
	assert.Equal(t, "заказ не найден", err.Error())

	var resp ErrorResp
	assert.True(t, errors.As(fmt.Errorf("get order: %w", ErrOrderNotFound), &resp))
	assert.Equal(t, 404, resp.StatusCode)
}
