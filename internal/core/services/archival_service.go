package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
)

// archivalService moves old transaction records to cold storage.
type archivalService struct {
	BaseService
	archiver  portsrepo.TransactionArchiver
	retention time.Duration
	batchSize int
	now       func() time.Time
}

// NewArchivalService creates a new ArchivalSvc.
func NewArchivalService(archiver portsrepo.TransactionArchiver, retention time.Duration, batchSize int) portssvc.ArchivalSvc {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &archivalService{
		archiver:  archiver,
		retention: retention,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.ArchivalSvc = (*archivalService)(nil)

// RunArchivalSweep walks candidates oldest first with a keyset cursor. A record
// that fails to move is counted and skipped; the cursor still advances past it.
func (s *archivalService) RunArchivalSweep(ctx context.Context) (*domain.ArchivalRunResult, error) {
	cutoff := s.now().Add(-s.retention)
	result := &domain.ArchivalRunResult{}
	var cursor *portsrepo.ArchiveCursor

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		batch, err := s.archiver.ListTransactionsCreatedBefore(ctx, cutoff, cursor, s.batchSize)
		if err != nil {
			s.LogError(ctx, err, "Failed to list archival candidates", slog.Int("archived_so_far", result.Archived))
			return result, fmt.Errorf("%w: listing archival candidates: %w", apperrors.ErrInternal, err)
		}

		for _, t := range batch {
			moved, err := s.archiver.ArchiveTransaction(ctx, t.TransactionID)
			if err != nil {
				result.Failed++
				s.LogError(ctx, err, "Failed to archive transaction", slog.String("transaction_id", t.TransactionID))
				continue
			}
			if moved {
				result.Archived++
			}
		}

		if len(batch) < s.batchSize {
			break
		}
		last := batch[len(batch)-1]
		cursor = &portsrepo.ArchiveCursor{CreatedAt: last.CreatedAt, TransactionID: last.TransactionID}
	}

	s.LogInfo(ctx, "Archival sweep finished",
		slog.Time("cutoff", cutoff),
		slog.Int("archived", result.Archived),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}
