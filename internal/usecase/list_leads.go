package usecase

import (
	"context"

	"github.com/xavierca1/visa-leads/internal/entity"
)

type ListLeadsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(repo entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo}
}

// Execute reads a fresh snapshot on every call so the view never lags behind the store.
func (uc *ListLeadsUseCase) Execute(ctx context.Context, q LeadQuery) (*LeadView, error) {
	leads, err := uc.Repo.FindAll(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to load leads", Err: err}
	}
	view := BuildLeadView(leads, q)
	return &view, nil
}
