package main

import (
	"calendarback/docs"
	"calendarback/internal/application"
	"calendarback/pkg/broker"
	"calendarback/pkg/config"
	"calendarback/pkg/db"
	"calendarback/pkg/httpserver"
	"calendarback/pkg/metrics"
	"calendarback/pkg/observability"
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title           Calendar Service API
// @version         1.0
// @description     Календарь с напоминаниями: OData CRUD, CSV-выгрузка и хаб уведомлений

// @BasePath /

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.InitLogger(conf.LoggingLevel, conf.LoggingFormat)
	defer func() { _ = logger.Sync() }()

	logger.Infof("LOGGING_LEVEL = %s", conf.LoggingLevel)
	if strings.ToLower(conf.LoggingLevel) == "debug" {
		broker.EnableSaramaZapLogs(logger)
	}

	docs.SwaggerInfo.Host = conf.Server.SwaggerHost
	docs.SwaggerInfo.Schemes = []string{conf.Server.SwaggerSchema}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	fiberServer := httpserver.NewFiber(conf, m)

	store, err := db.NewPostgres(ctx, conf.Postgres, logger)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}

	var kafka *broker.KafkaBroker
	if conf.Broker.Kafka.Enabled {
		kafka, err = broker.NewKafkaBroker(conf.Broker.Kafka, logger)
		if err != nil {
			logger.Fatalf("kafka: %v", err)
		}
		logger.Infof("Kafka broker создан успешно. Topic: %s", kafka.Topic)
	} else {
		logger.Info("Kafka выключена, уведомления рассылаются только локальным клиентам")
	}

	server, err := application.NewApp(ctx, &conf, logger, store, fiberServer, kafka, reg, m)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Info("Calendar service started successfully")
	logger.Infof("Server config: port=%s swagger=%s://%s", conf.Server.Port, conf.Server.SwaggerSchema, conf.Server.SwaggerHost)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("error listening for server: %v", err)
		}
		logger.Infof("server %v closed", conf.Server.Port)
	}()

	//graceful shutdown
	osSignal := <-interrupt
	switch osSignal {
	case os.Interrupt:
		logger.Infof("%v Got SIGINT...", conf.Server.Port)
	case syscall.SIGTERM:
		logger.Infof("%v Got SIGTERM...", conf.Server.Port)
	}

	cancel()

	if err := server.Shutdown(); err != nil {
		logger.Errorf("server %v forced to shutdown: %v", conf.Server.Port, err)
	}

	store.Close()
	logger.Infof("postgres db connection closed")

	logger.Infof("server shutdown %v done", conf.Server.Port)
}
