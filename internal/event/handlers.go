package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleOrderPlacedEvent(ctx context.Context, ev OrderPlacedEvent) error {
	s.logger.InfoContext(ctx, "order placed",
		slog.String("user_id", ev.UserID),
		slog.String("slot_id", ev.SlotID),
		slog.String("product", ev.ProductName),
		slog.Int("quantity", ev.Quantity),
		slog.String("total", ev.Total),
		slog.Bool("slot_emptied", ev.SlotEmptied),
	)

	if ev.SlotEmptied {
		s.logger.WarnContext(ctx, "slot sold out and was removed",
			slog.String("slot_id", ev.SlotID),
			slog.String("product", ev.ProductName),
		)
	}

	return nil
}

func (s *Service) handleCreditAddedEvent(ctx context.Context, ev CreditAddedEvent) error {
	s.logger.InfoContext(ctx, "credit added",
		slog.String("user_id", ev.UserID),
		slog.String("amount", ev.Amount),
		slog.String("balance", ev.Balance),
	)
	return nil
}

func (s *Service) handleCreditRefundedEvent(ctx context.Context, ev CreditRefundedEvent) error {
	s.logger.InfoContext(ctx, "credit refunded",
		slog.String("user_id", ev.UserID),
		slog.String("refunded", ev.Refunded),
	)
	return nil
}
