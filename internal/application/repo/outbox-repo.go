package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/edu-k3scluster-tech/online-store/internal/application/common"
	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
)

func (r *RepoImpl) StageOutbox(ctx context.Context, m *entity.OutboxMessage) error {
	r.logger.Debugf("[order: %s] StageOutbox started", m.AggregateID)

	err := r.db.QueryRow(ctx, stageOutboxSQL,
		m.AggregateID, m.AggregateType, m.EventType, []byte(m.Payload), string(m.State),
	).Scan(&m.ID, &m.NextAttemptAt, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}

	return nil
}

func (r *RepoImpl) ClaimOutboxBatch(ctx context.Context, workerToken uuid.UUID, lease time.Duration, limit int) ([]entity.OutboxMessage, error) {
	r.logger.Debugf("[worker: %s, lease: %s, limit: %d] ClaimOutboxBatch started", workerToken, lease, limit)

	rows, err := r.db.Query(ctx, claimBatchSQL, common.PgInterval(lease), workerToken, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox batch: %w", err)
	}
	defer rows.Close()

	var res []entity.OutboxMessage
	for rows.Next() {
		var (
			m     entity.OutboxMessage
			state string
		)
		if err := rows.Scan(
			&m.ID, &m.AggregateID, &m.AggregateType, &m.EventType, &m.Payload, &state,
			&m.Attempts, &m.ClaimedBy, &m.ClaimedAt, &m.PublishedAt, &m.NextAttemptAt, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan claimed outbox: %w", err)
		}
		m.State = entity.OutboxState(state)
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim rows err: %w", err)
	}

	return res, nil
}

func (r *RepoImpl) MarkPublished(ctx context.Context, outboxID int64) error {
	result, err := r.db.Exec(ctx, markPublishedSQL, outboxID)
	if err != nil {
		return fmt.Errorf("outbox mark published: %w", err)
	}
	if result.RowsAffected() == 0 {
		// уже PUBLISHED либо перехвачено другим воркером — no-op
		r.logger.Debugf("[ID %d] mark published: no rows affected", outboxID)
	}

	return nil
}

func (r *RepoImpl) MarkFailedWithBackoff(ctx context.Context, outboxID int64, nextAttemptAt time.Time) error {
	_, err := r.db.Exec(ctx, markFailedSQL, outboxID, nextAttemptAt)
	if err != nil {
		return fmt.Errorf("outbox mark failed: %w", err)
	}

	return nil
}

func (r *RepoImpl) MarkPoison(ctx context.Context, outboxID int64) error {
	_, err := r.db.Exec(ctx, markPoisonSQL, outboxID)
	if err != nil {
		return fmt.Errorf("outbox mark poison: %w", err)
	}

	return nil
}

func (r *RepoImpl) PurgePublishedOutbox(ctx context.Context, days *int) (int64, error) {
	d := defaultPurgeDays
	if days != nil && *days > 0 {
		d = *days
	} else if days != nil && *days == 0 {
		r.logger.Warnf("purgeDays is 0, skipping purge to prevent deleting fresh outbox rows")
		return 0, nil
	}

	r.logger.Infof("start purging published outbox rows older than %d days", d)

	result, err := r.db.Exec(ctx, purgePublishedSQL, d)
	if err != nil {
		r.logger.Errorf("error purging outbox: %v", err)
		return 0, fmt.Errorf("purge outbox: %w", err)
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		r.logger.Infof("no outbox rows purged (nothing older than %d days)", d)
		return 0, nil
	}
	r.logger.Infof("purged %d published outbox rows (older than %d days)", rowsAffected, d)
	return rowsAffected, nil
}
