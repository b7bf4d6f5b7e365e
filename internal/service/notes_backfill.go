package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/repository"
	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

const backfillBatchSize = 200

// NotesBackfill converts legacy free-text customer notes into structured
// delivery info. Converted rows no longer match, so running it again is a
// no-op.
type NotesBackfill struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

// NewNotesBackfill creates the backfill.
func NewNotesBackfill(orders repository.OrderRepository, logger *zap.Logger) *NotesBackfill {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotesBackfill{orders: orders, logger: logger}
}

// Run converts every pending row and returns how many were updated.
func (b *NotesBackfill) Run(ctx context.Context) (int, error) {
	converted := 0
	for {
		if err := ctx.Err(); err != nil {
			return converted, err
		}
		batch, err := b.orders.ListLegacyNotes(ctx, backfillBatchSize)
		if err != nil {
			return converted, apperrors.NewPersistenceError(err)
		}
		if len(batch) == 0 {
			break
		}
		for _, note := range batch {
			info := domain.ParseLegacyNotes(note.Notes)
			if err := b.orders.SetDeliveryInfo(ctx, note.OrderID, info); err != nil {
				return converted, apperrors.MapRepoError(err, "order", map[string]any{"order_id": note.OrderID})
			}
			converted++
		}
		if len(batch) < backfillBatchSize {
			break
		}
	}
	if converted > 0 {
		b.logger.Info("legacy order notes converted", zap.Int("orders", converted))
	}
	return converted, nil
}
