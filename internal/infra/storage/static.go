package storage

import (
	"context"
	"strings"

	"github.com/xavierca1/visa-leads/internal/entity"
)

const DefaultStaticBaseURL = "https://storage.example.com"

// StaticStore stores nothing. It hands back a URL under BaseURL so the intake
// flow can run without a bucket.
type StaticStore struct {
	BaseURL string
}

func NewStaticStore(baseURL string) *StaticStore {
	if baseURL == "" {
		baseURL = DefaultStaticBaseURL
	}
	return &StaticStore{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *StaticStore) Upload(ctx context.Context, key string, _ entity.Attachment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + escapeKey(key), nil
}

func (s *StaticStore) Delete(ctx context.Context, _ string) error {
	return ctx.Err()
}
