package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/vending-machine/internal/config"
	"github.com/tuanvumaihuynh/vending-machine/internal/event"
	"github.com/tuanvumaihuynh/vending-machine/internal/http"
	"github.com/tuanvumaihuynh/vending-machine/internal/log"
	"github.com/tuanvumaihuynh/vending-machine/internal/relay"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
	"github.com/tuanvumaihuynh/vending-machine/internal/session"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/kv"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/mq"
	"github.com/tuanvumaihuynh/vending-machine/internal/telemetry"
	"github.com/tuanvumaihuynh/vending-machine/pkg/cmdutil"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Redis    config.Redis
		HTTP     config.HTTP
		Session  config.Session
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	redisClient, err := kv.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("error creating redis client: %w", err)
	}
	defer redisClient.Close()

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	userRepository := repository.NewUserRepository(dbClient)
	buyerRepository := repository.NewBuyerRepository(dbClient)
	slotRepository := repository.NewSlotRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	services := http.Services{
		Slot:   service.NewSlotService(slotRepository, v),
		Credit: service.NewCreditService(dbClient, buyerRepository, outboxMsgRepository),
		Order:  service.NewOrderService(dbClient, buyerRepository, slotRepository, outboxMsgRepository, v),
		Auth:   service.NewAuthService(dbClient, userRepository, buyerRepository, v),
	}
	sessionStore := session.NewRedisStore(redisClient, cfg.Session.TTL)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, cfg.Session, logger, sessionStore, dbClient, services)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running relay service: %w", err))
		}
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
