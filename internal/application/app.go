package application

import (
	"calendarback/internal/application/common"
	"calendarback/internal/application/repo"
	"calendarback/internal/application/service"
	"calendarback/internal/application/use-cases"
	"calendarback/internal/controllers/cron"
	"calendarback/internal/controllers/handler"
	"calendarback/internal/controllers/listener"
	"calendarback/internal/transport/hub"
	"calendarback/internal/transport/producer"
	"calendarback/pkg/broker"
	"calendarback/pkg/config"
	"calendarback/pkg/db"
	"calendarback/pkg/metrics"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type App struct {
	ctx            context.Context
	conf           *config.Config
	logger         *zap.SugaredLogger
	postgres       *db.Postgres
	httpServer     *fiber.App
	kafka          *broker.KafkaBroker
	hub            *hub.Hub
	cronController *cron.Controller
	consumerDone   chan struct{}
}

// NewApp собирает приложение. kafkaBroker == nil - Kafka выключена,
// напоминания уходят прямо в локальный хаб.
func NewApp(
	ctx context.Context,
	conf *config.Config,
	logger *zap.SugaredLogger,
	postgres *db.Postgres,
	httpServer *fiber.App,
	kafkaBroker *broker.KafkaBroker,
	gatherer prometheus.Gatherer,
	m *metrics.Metrics) (*App, error) {
	//Логируем версию приложения
	logger.Infof("Запуск Calendar Service версии: %s", common.Version)

	notificationHub := hub.NewHub(logger.Named("hub"), m)

	store := repo.NewRepo(postgres, logger, m)
	tx := repo.NewTransactions(store, logger)

	var srv *service.ServiceImpl
	if kafkaBroker != nil {
		kafkaProducer := producer.NewProducer(kafkaBroker, logger, conf.Broker.Kafka.MaxAttempts, m)
		srv = service.NewService(store, tx, kafkaProducer, notificationHub, kafkaProducer, logger, m)
	} else {
		srv = service.NewService(store, tx, notificationHub, notificationHub, nil, logger, m)
	}

	uc := use_cases.NewUseCase(srv, logger, conf)
	h := handler.NewCalendarHandler(uc, logger, kafkaBroker != nil)
	r := handler.NewRouter(h, notificationHub, httpServer, gatherer, conf, logger)

	// демо-данные до первого цикла рассылки
	uc.SeedDemoData(ctx)

	cronController := cron.NewController(ctx, logger)
	if err := cronController.RegisterReminderJob(uc, conf.Reminder); err != nil {
		return nil, fmt.Errorf("не удалось зарегистрировать cron задачу: %w", err)
	}
	cronController.Start()

	r.RegisterRouter()

	app := &App{
		ctx:            ctx,
		conf:           conf,
		logger:         logger,
		postgres:       postgres,
		httpServer:     httpServer,
		kafka:          kafkaBroker,
		hub:            notificationHub,
		cronController: cronController,
		consumerDone:   make(chan struct{}),
	}

	if kafkaBroker != nil {
		go app.runConsumer(ctx, uc, m)
	} else {
		close(app.consumerDone)
	}

	return app, nil
}

func (a *App) Run() error {
	return a.httpServer.Listen(fmt.Sprintf(":%s", a.conf.Server.Port))
}

// Shutdown: сначала новые циклы рассылки и consumer, потом клиенты хаба и HTTP.
// Контекст приложения к этому моменту должен быть отменён.
func (a *App) Shutdown() error {
	if a.cronController != nil {
		a.cronController.Stop()
	}

	<-a.consumerDone
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Errorf("закрытие kafka: %v", err)
		}
		a.logger.Info("закрытие kafka: done")
	}

	a.hub.Shutdown()
	return a.httpServer.Shutdown()
}

func (a *App) runConsumer(ctx context.Context, usecase use_cases.UseCaser, m *metrics.Metrics) {
	defer close(a.consumerDone)

	a.logger.Infof("Запуск consumer для топика: %s, группа %s", a.kafka.Topic, a.kafka.GroupID)

	kafkaBrokerConsumer := listener.NewKafkaBrokerConsumer(usecase, a.logger, m)

	failures := 0
	for {
		err := a.kafka.ConsumerGroup.Consume(ctx, []string{a.kafka.Topic}, kafkaBrokerConsumer)
		if ctx.Err() != nil {
			a.logger.Info("Consumer остановлен по контексту")
			return
		}
		if err == nil {
			// ребалансировка, сессия завершилась штатно
			failures = 0
			continue
		}

		a.logger.Errorf("Ошибка consumer: %v", err)
		if common.SleepCtx(ctx, common.ConsumerBackoff.Next(failures)) != nil {
			return
		}
		failures++
	}
}
