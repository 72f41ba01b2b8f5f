package use_cases

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	"github.com/edu-k3scluster-tech/online-store/internal/application/service"
	"github.com/edu-k3scluster-tech/online-store/pkg/config"
)

type UseCaser interface {
	CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	PurgePublishedOutbox(ctx context.Context)
	RunRelay(ctx context.Context)
	ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time)

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

type UseCase struct {
	service service.Service
	logger  *zap.SugaredLogger
	conf    *config.Config
}

func NewUseCase(service service.Service, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		logger:  logger,
		conf:    conf,
	}
}

func (u *UseCase) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	return u.service.HealthCheck(ctx)
}

func (u *UseCase) CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error) {
	u.logger.Debugf("[user: %s] CreateOrder started", req.UserID)
	return u.service.CreateOrder(ctx, &req)
}

func (u *UseCase) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	u.logger.Debugf("[order: %s] GetOrder started", id)
	return u.service.GetOrderByID(ctx, id)
}

func (u *UseCase) PurgePublishedOutbox(ctx context.Context) {
	days := u.conf.Cron.PurgeDays
	u.logger.Infof("PurgePublishedOutbox called with purgeDays=%d", days)
	u.service.PurgePublishedOutbox(ctx, &days)
}

func (u *UseCase) RunRelay(ctx context.Context) {
	u.logger.Debug("relay started")
	u.service.RelayRun(ctx)
}

func (u *UseCase) ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) {
	u.logger.Debugf("consumer message: %s, time: %v", msg, msgTime)
}
