package cron

import (
	"context"

	"go.uber.org/zap"

	use_cases "github.com/edu-k3scluster-tech/online-store/internal/application/use-cases"
)

// PurgeOutboxJob - задача для удаления опубликованных outbox-сообщений
// старше окна хранения
type PurgeOutboxJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewPurgeOutboxJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *PurgeOutboxJob {
	return &PurgeOutboxJob{
		usecase: usecase,
		logger:  logger,
	}
}

// Run выполняет задачу очистки outbox
func (j *PurgeOutboxJob) Run(ctx context.Context) {
	j.logger.Info("Запуск задачи очистки опубликованных outbox-сообщений")

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("Паника при выполнении задачи очистки outbox: %v", r)
		}
	}()

	j.usecase.PurgePublishedOutbox(ctx)
	j.logger.Info("Задача очистки outbox завершена")
}
