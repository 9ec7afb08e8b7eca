package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

type DigestSender interface {
	SendPendingDigest(ctx context.Context, leads []entity.Lead, minAge time.Duration) error
}

// PendingDigestWorker periodically mails the leads that are still Pending
// after minAge.
type PendingDigestWorker struct {
	repo         entity.LeadRepositoryInterface
	sender       DigestSender
	minAge       time.Duration
	tickInterval time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

func NewPendingDigestWorker(
	repo entity.LeadRepositoryInterface,
	sender DigestSender,
	tickInterval, minAge time.Duration,
	log zerolog.Logger,
) *PendingDigestWorker {
	return &PendingDigestWorker{
		repo:         repo,
		sender:       sender,
		minAge:       minAge,
		tickInterval: tickInterval,
		now:          time.Now,
		log:          log.With().Str("component", "pending_digest").Logger(),
	}
}

func (w *PendingDigestWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.tickInterval).Dur("min_age", w.minAge).Msg("pending digest worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("pending digest worker stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("pending digest failed")
			}
		}
	}
}

// RunOnce sends one digest and returns how many leads it listed. Nothing is
// sent when no lead qualifies.
func (w *PendingDigestWorker) RunOnce(ctx context.Context) (int, error) {
	leads, err := w.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load leads: %w", err)
	}

	cutoff := w.now().Add(-w.minAge)
	var stale []entity.Lead

	q := usecase.LeadQuery{
		Status:   string(entity.StatusPending),
		Sort:     usecase.SortNewest,
		PageSize: usecase.MaxPageSize,
	}
	for page := 1; ; page++ {
		q.Page = page
		view := usecase.BuildLeadView(leads, q)
		for _, l := range view.Leads {
			if !l.SubmittedAt.After(cutoff) {
				stale = append(stale, l)
			}
		}
		if view.Page >= view.TotalPages {
			break
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}
	if err := w.sender.SendPendingDigest(ctx, stale, w.minAge); err != nil {
		return 0, fmt.Errorf("send digest: %w", err)
	}

	w.log.Info().Int("leads", len(stale)).Msg("pending digest sent")
	return len(stale), nil
}
