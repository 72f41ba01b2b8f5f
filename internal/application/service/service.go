package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/appers"
	"github.com/edu-k3scluster-tech/online-store/internal/application/common"
	"github.com/edu-k3scluster-tech/online-store/internal/application/entity"
	"github.com/edu-k3scluster-tech/online-store/internal/application/repo"
	"github.com/edu-k3scluster-tech/online-store/internal/transport/producer"
	"github.com/edu-k3scluster-tech/online-store/pkg/config"
	"github.com/edu-k3scluster-tech/online-store/pkg/metrics"
)

type Service interface {
	CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	PurgePublishedOutbox(ctx context.Context, days *int)
	RelayRun(ctx context.Context)

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

type ServiceImpl struct {
	repo          repo.Repo
	transactions  repo.Transactions
	kafkaProducer producer.Producer
	logger        *zap.SugaredLogger
	cfg           *config.RelayConfig
	m             *metrics.Metrics
}

func NewService(repo repo.Repo, transactions repo.Transactions, kafkaProducer producer.Producer, logger *zap.SugaredLogger, cfg *config.RelayConfig, m *metrics.Metrics) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		transactions:  transactions,
		kafkaProducer: kafkaProducer,
		logger:        logger,
		cfg:           cfg,
		m:             m,
	}
}

// HealthCheck проверяет доступность БД и Kafka
func (s *ServiceImpl) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	dbErr := s.repo.HealthCheck(ctx)
	dbHealthy = dbErr == nil

	kafkaErr := s.kafkaProducer.HealthCheck(ctx)
	kafkaHealthy = kafkaErr == nil

	// Возвращаем ошибку только если обе проверки провалились
	if !dbHealthy && !kafkaHealthy {
		return dbHealthy, kafkaHealthy, fmt.Errorf("database: %v, kafka: %v", dbErr, kafkaErr)
	}

	return dbHealthy, kafkaHealthy, nil
}

// CreateOrder считает сумму заказа точной десятичной арифметикой (в копейках,
// без плавающей точки) и пишет заказ вместе с outbox-сообщением в одной транзакции.
func (s *ServiceImpl) CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.Order, error) {
	s.logger.Debugf("[user: %s] CreateOrder started, items: %d", req.UserID, len(req.Items))

	if len(req.Items) == 0 {
		return nil, appers.ErrEmptyItems
	}

	var amountCents int64
	for i := range req.Items {
		cents, err := common.ParseAmount(req.Items[i].Price)
		if err != nil {
			s.logger.Warnf("[user: %s] invalid item price %q: %v", req.UserID, req.Items[i].Price, err)
			return nil, err
		}
		if cents < 0 {
			return nil, appers.ErrNegativePrice
		}
		amountCents += cents
	}

	order, err := s.transactions.CreateOrder(ctx, req.UserID, req.Items, amountCents)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("[order: %s] created, amount=%s", order.ID, order.Amount)
	return order, nil
}

func (s *ServiceImpl) GetOrderByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	s.logger.Debugf("[order: %s] GetOrderByID started", id)

	return s.repo.GetOrderByID(ctx, id)
}

func (s *ServiceImpl) PurgePublishedOutbox(ctx context.Context, days *int) {
	s.logger.Debugf("PurgePublishedOutbox started")

	_, _ = s.repo.PurgePublishedOutbox(ctx, days)
}
