package application

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/edu-k3scluster-tech/online-store/internal/application/common"
	"github.com/edu-k3scluster-tech/online-store/internal/application/repo"
	"github.com/edu-k3scluster-tech/online-store/internal/application/service"
	use_cases "github.com/edu-k3scluster-tech/online-store/internal/application/use-cases"
	"github.com/edu-k3scluster-tech/online-store/internal/controllers/cron"
	"github.com/edu-k3scluster-tech/online-store/internal/controllers/handler"
	"github.com/edu-k3scluster-tech/online-store/internal/controllers/listener"
	"github.com/edu-k3scluster-tech/online-store/internal/transport/producer"
	"github.com/edu-k3scluster-tech/online-store/pkg/broker"
	"github.com/edu-k3scluster-tech/online-store/pkg/config"
	"github.com/edu-k3scluster-tech/online-store/pkg/db"
	"github.com/edu-k3scluster-tech/online-store/pkg/metrics"
)

type App struct {
	ctx            context.Context
	conf           *config.Config
	logger         *zap.SugaredLogger
	postgres       *db.Postgres
	httpServer     *fiber.App
	kafka          *broker.KafkaBroker
	cronController *cron.Controller
}

// NewApp собирает сервис явно, без DI-контейнера: каждый объект создаётся
// один раз и передаётся ссылкой тем, кто его использует.
func NewApp(
	ctx context.Context,
	conf *config.Config,
	logger *zap.SugaredLogger,
	postgres *db.Postgres,
	httpServer *fiber.App,
	kafkaBroker *broker.KafkaBroker,
	m *metrics.Metrics) *App {
	logger.Infof("Запуск Order Service версии: %s", common.Version)

	go func() {
		<-ctx.Done()
		logger.Info("закрытие consumer group")
		kafkaBroker.ConsumerGroup.Close()
		logger.Info("закрытие consumer group: done")
	}()

	store := repo.NewRepo(postgres, logger)
	tx := repo.NewTransactions(store, logger)
	kafkaProducer := producer.NewProducer(kafkaBroker, logger, conf.Broker.Kafka.MaxAttempts, m)
	srv := service.NewService(store, tx, kafkaProducer, logger, &conf.Relay, m)
	uc := use_cases.NewUseCase(srv, logger, conf)
	h := handler.NewOrderHandler(uc, logger)
	r := handler.NewRouter(h, httpServer, conf, logger)

	// Инициализация cron контроллера
	cronController := cron.NewController(ctx, logger)
	if err := cronController.RegisterPurgeOutboxJob(uc, conf.Cron); err != nil {
		logger.Fatalf("не удалось зарегистрировать cron задачу: %v", err)
	}
	cronController.Start()

	go uc.RunRelay(ctx)

	r.RegisterRouter()

	app := &App{
		ctx:            ctx,
		conf:           conf,
		logger:         logger,
		postgres:       postgres,
		httpServer:     httpServer,
		kafka:          kafkaBroker,
		cronController: cronController,
	}

	go app.runConsumer(ctx, logger, uc, kafkaBroker, m)

	return app
}

func (a *App) Run() error {
	return a.httpServer.Listen(fmt.Sprintf(":%s", a.conf.Server.Port))
}

func (a *App) Shutdown() error {
	// Останавливаем cron задачи
	if a.cronController != nil {
		a.cronController.Stop()
	}
	return a.httpServer.Shutdown()
}

func (a *App) runConsumer(ctx context.Context, logger *zap.SugaredLogger, usecase use_cases.UseCaser, kafkaBroker *broker.KafkaBroker, m *metrics.Metrics) {
	logger.Infof("Запуск consumer для топика: %s", kafkaBroker.ConsumerTopic)

	kafkaBrokerConsumer := listener.NewKafkaBrokerConsumer(usecase, logger, m)

	for {
		logger.Debugf("Попытка подключения к consumer group...")
		err := kafkaBroker.ConsumerGroup.Consume(ctx, []string{kafkaBroker.ConsumerTopic}, kafkaBrokerConsumer)
		if err != nil {
			logger.Errorf("Ошибка consumer: %v", err)
		}
		if ctx.Err() != nil {
			logger.Info("Consumer остановлен по контексту")
			return
		}
	}
}
