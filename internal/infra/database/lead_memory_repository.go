package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/visa-leads/internal/entity"
)

// MemoryLeadRepository keeps leads in process memory. It is the default store
// and the reference behaviour for the durable ones.
type MemoryLeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	order []string

	// Now stamps SubmittedAt on creation.
	Now func() time.Time
}

func NewMemoryLeadRepository() *MemoryLeadRepository {
	return &MemoryLeadRepository{
		leads: make(map[string]*entity.Lead),
		Now:   time.Now,
	}
}

func (r *MemoryLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead.ID = uuid.New().String()
	lead.Status = entity.StatusPending
	lead.SubmittedAt = stamp(r.Now())

	stored := lead.Clone()
	r.leads[lead.ID] = &stored
	r.order = append(r.order, lead.ID)
	return nil
}

func (r *MemoryLeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Lead, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.leads[id].Clone())
	}
	return out, nil
}

func (r *MemoryLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	c := lead.Clone()
	return &c, nil
}

// UpdateStatus checks and applies the transition under the write lock, so two
// concurrent updates of the same lead cannot both succeed.
func (r *MemoryLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	if err := lead.TransitionTo(status); err != nil {
		return nil, err
	}
	c := lead.Clone()
	return &c, nil
}

func (r *MemoryLeadRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// stamp normalizes creation times to what every store can round-trip.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
