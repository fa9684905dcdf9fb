package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/vending-machine/internal/config"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/mq"
	"github.com/tuanvumaihuynh/vending-machine/pkg/ptr"
)

// Service publishes outbox messages written by the domain services and
// purges the ones already published.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	now      func() time.Time
	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	var scheduler *cron.Cron
	if s.cfg.PurgeSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(s.cfg.PurgeSchedule, func() { s.purge(ctx) }); err != nil {
			return nil, fmt.Errorf("schedule outbox purge %q: %w", s.cfg.PurgeSchedule, err)
		}
		scheduler.Start()
	}

	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
			<-stoppedChan
		}
		cancel()

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
	}, nil
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			// Drain a backlog without waiting for the next tick.
			for {
				n, err := s.relayBatch(ctx)
				if err != nil {
					s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
					break
				}
				//nolint:gosec
				if n < int(s.cfg.BatchSize) || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// relayBatch publishes one batch of unprocessed messages and records the
// outcome of each. It returns the size of the batch.
func (s *Service) relayBatch(ctx context.Context) (int, error) {
	var count int
	err := s.db.WithTx(ctx, func(db db.DB) error {
		outboxMsgs, err := s.outboxMsgRepo.
			WithDB(db).
			ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
				//nolint:gosec
				BatchSize: int32(s.cfg.BatchSize),
			})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		count = len(outboxMsgs)
		if count == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", count))

		items := make([]repository.BulkUpdateOutboxMsgsItem, count)
		g, gctx := errgroup.WithContext(ctx)
		if s.cfg.Concurrency > 0 {
			g.SetLimit(s.cfg.Concurrency)
		}

		for i, msg := range outboxMsgs {
			g.Go(func() error {
				items[i] = repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}

				produceMsg := mq.ProduceMsg{
					Topic:        msg.Topic,
					Headers:      msg.Headers,
					Payload:      msg.Payload,
					PartitionKey: msg.PartitionKey,
				}
				if err := s.mqProducer.Produce(gctx, produceMsg); err != nil {
					s.logger.ErrorContext(ctx,
						"error producing message",
						slog.String("outbox_msg_id", msg.ID.String()),
						slog.String("topic", msg.Topic),
						slog.String("partition_key", ptr.ValueOr(msg.PartitionKey, "")),
						slog.Any("error", err),
					)
					items[i].Error = ptr.New(fmt.Sprintf("produce message: %v", err))
				}

				// A failed message is recorded, not propagated, so the rest of
				// the batch still gets published.
				return nil
			})
		}

		//nolint:errcheck
		g.Wait()

		if err := s.outboxMsgRepo.
			WithDB(db).
			BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
				Items: items,
			}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		return nil
	})

	return count, err
}

func (s *Service) purge(ctx context.Context) {
	before := s.now().Add(-s.cfg.Retention)

	purged, err := s.outboxMsgRepo.PurgeProcessedOutboxMsgs(ctx, before)
	if err != nil {
		s.logger.ErrorContext(ctx, "error purging outbox msgs", slog.Any("error", err))
		return
	}

	if purged > 0 {
		s.logger.InfoContext(ctx, "purged processed outbox msgs",
			slog.Int64("count", purged),
			slog.Time("before", before),
		)
	}
}
