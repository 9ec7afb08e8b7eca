package usecase

import (
	"context"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// FileStorage stores submission attachments and returns a URL to reach them.
type FileStorage interface {
	Upload(ctx context.Context, key string, file entity.Attachment) (string, error)
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishLeadEvent(context.Context, entity.LeadEvent) error { return nil }
