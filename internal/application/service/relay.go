package service

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/edu-k3scluster-tech/online-store/internal/application/common"
	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
)

// RelayRun фоновый publisher: опрашивает outbox, захватывает пачку с арендой
// и раздаёт сообщения воркерам. Несколько экземпляров relay могут работать
// параллельно — эксклюзивность даёт атомарный claim в БД, другой координации нет.
func (s *ServiceImpl) RelayRun(ctx context.Context) {
	workerToken, err := uuid.NewV4()
	if err != nil {
		s.logger.Errorw("relay token generation failed", "err", err)
		return
	}

	s.logger.Infow("relay started",
		"token", workerToken.String(), "workers", s.cfg.Workers, "batch", s.cfg.BatchSize, "lease", s.cfg.Lease.String())

	jobs := make(chan entity.OutboxMessage, s.cfg.BatchSize*2)

	// стартуем воркеров
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.relayWorker(ctx, id, jobs)
		}(i)
	}

	ticker := time.NewTicker(s.cfg.PollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// новые захваты прекращаем, воркеры дорабатывают текущие сообщения
			s.logger.Infow("relay stopping")
			wg.Wait()
			s.logger.Infow("relay stopped")
			return
		case <-ticker.C:
			msgs, err := s.transactions.ClaimOutbox(ctx, *s.cfg, workerToken)
			if err != nil {
				s.logger.Errorw("claim outbox failed", "err", err)
				continue
			}

			if s.m != nil && len(msgs) > 0 {
				s.m.Outbox.ClaimedBatchSize.Observe(float64(len(msgs)))
			}

			s.logger.Debugf("len jobs: %d, len msgs: %d", len(jobs), len(msgs))
			for _, m := range msgs {
				select {
				case jobs <- m:
				case <-ctx.Done():
					wg.Wait()
					return
				}
			}
		}
	}
}

func (s *ServiceImpl) relayWorker(ctx context.Context, id int, jobs <-chan entity.OutboxMessage) {
	s.logger.Infow("relay worker started", "id", id)
	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("relay worker stopping", "id", id)
			return
		case m := <-jobs:
			s.ProcessOne(ctx, id, m)
		}
	}
}

// ProcessOne публикует одно захваченное сообщение и фиксирует исход.
// Ошибка одного сообщения никогда не валит цикл и не трогает остальную пачку.
// Исход пишем через context.Background(): начатая публикация должна быть
// отмечена в outbox даже во время остановки сервиса, иначе сообщение провисит
// CLAIMED до конца аренды.
func (s *ServiceImpl) ProcessOne(ctx context.Context, wid int, m entity.OutboxMessage) {
	s.logger.Debugf("[ID %d] relay-process started, workerID: %d, attempts: %d", m.ID, wid, m.Attempts)

	if err := s.kafkaProducer.ProduceMessage(ctx, m.ID, m.Payload); err != nil {
		s.logger.Errorf("[ID %d] kafka publish failed, err: %v", m.ID, err)
		s.markFailedOrPoison(context.Background(), m.ID, m.Attempts)
		return
	}
	s.logger.Infof("[ID %d] published to kafka", m.ID)

	if err := s.repo.MarkPublished(context.Background(), m.ID); err != nil {
		// сообщение уже ушло — повторно слать нельзя; после аренды его перехватит
		// следующий claim, а идемпотентный consumer переживёт дубль
		s.logger.Errorf("[ID %d] mark published failed, err: %v", m.ID, err)
		return
	}

	if s.m != nil {
		s.m.Outbox.MessagesTotal.WithLabelValues("published").Inc()
	}
	s.logger.Infof("[ID %d] relay-process completed", m.ID)
}

// markFailedOrPoison возвращает сообщение в PENDING с экспоненциальным backoff,
// либо переводит в FAILED, когда лимит попыток исчерпан. FAILED — терминальное
// состояние: сообщение исключается из будущих claim и ждёт оператора.
func (s *ServiceImpl) markFailedOrPoison(ctx context.Context, outboxID int64, attempts int) {
	if attempts+1 >= s.cfg.MaxAttempts {
		if err := s.repo.MarkPoison(ctx, outboxID); err != nil {
			s.logger.Errorf("[ID %d] mark poison failed: %v", outboxID, err)
			return
		}
		if s.m != nil {
			s.m.Outbox.MessagesTotal.WithLabelValues("poisoned").Inc()
		}
		s.logger.Errorf("[ID %d] poison message: %d attempts exhausted, moved to FAILED", outboxID, attempts+1)
		return
	}

	next := time.Now().UTC().Add(common.NextBackoffWithJitter(attempts))
	if err := s.repo.MarkFailedWithBackoff(ctx, outboxID, next); err != nil {
		s.logger.Errorf("[ID %d] mark failed with backoff failed: %v", outboxID, err)
		return
	}
	if s.m != nil {
		s.m.Outbox.MessagesTotal.WithLabelValues("retried").Inc()
	}
}
