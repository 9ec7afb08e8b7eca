package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/database"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

func seedLead(t *testing.T, repo entity.LeadRepositoryInterface) *entity.Lead {
	t.Helper()
	l := &entity.Lead{
		FirstName:       "Ana",
		LastName:        "Lee",
		Email:           "ana@x.com",
		LinkedInProfile: "https://linkedin.com/in/ana",
		VisasOfInterest: []entity.VisaType{entity.VisaO1},
		Country:         entity.UnknownCountry,
	}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func TestUpdateLeadStatusMarksReachedOut(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	created := seedLead(t, repo)

	publisher := new(MockEventPublisher)
	publisher.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(e entity.LeadEvent) bool {
		return e.Type == entity.LeadStatusChanged && e.LeadID == created.ID && e.Status == entity.StatusReachedOut
	})).Return(nil).Once()

	uc := usecase.NewUpdateLeadStatusUseCase(repo, publisher, zerolog.Nop())
	updated, err := uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: created.ID, Status: "Reached Out"})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusReachedOut, updated.Status)
	assert.Equal(t, created.SubmittedAt, updated.SubmittedAt)
	assert.Equal(t, created.Email, updated.Email)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReachedOut, stored.Status)
	publisher.AssertExpectations(t)
}

func TestUpdateLeadStatusRejectsIllegalTransitions(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	created := seedLead(t, repo)
	uc := usecase.NewUpdateLeadStatusUseCase(repo, nil, zerolog.Nop())

	_, err := uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: created.ID, Status: "Pending"})
	assert.ErrorIs(t, err, entity.ErrIllegalTransition)

	_, err = uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: created.ID, Status: "Reached Out"})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: created.ID, Status: "Reached Out"})
	assert.ErrorIs(t, err, entity.ErrIllegalTransition)

	_, err = uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: created.ID, Status: "Pending"})
	assert.ErrorIs(t, err, entity.ErrIllegalTransition)

	stored, _ := repo.FindByID(context.Background(), created.ID)
	assert.Equal(t, entity.StatusReachedOut, stored.Status)
}

func TestUpdateLeadStatusUnknownLead(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo)
	uc := usecase.NewUpdateLeadStatusUseCase(repo, nil, zerolog.Nop())

	_, err := uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: "missing", Status: "Reached Out"})
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	stored, _ := repo.FindAll(context.Background())
	require.Len(t, stored, 1)
	assert.Equal(t, entity.StatusPending, stored[0].Status)
}

func TestUpdateLeadStatusInvalidStatus(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := usecase.NewUpdateLeadStatusUseCase(repo, nil, zerolog.Nop())

	_, err := uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: "1", Status: "Archived"})

	assert.ErrorIs(t, err, entity.ErrInvalidStatus)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLeadStatusIgnoresPublishFailure(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	created := seedLead(t, repo)

	publisher := new(MockEventPublisher)
	publisher.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := usecase.NewUpdateLeadStatusUseCase(repo, publisher, zerolog.Nop())
	updated, err := uc.Execute(context.Background(), usecase.UpdateLeadStatusInput{ID: created.ID, Status: "Reached Out"})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusReachedOut, updated.Status)
}

func TestListLeadsReadsFreshSnapshot(t *testing.T) {
	repo := database.NewMemoryLeadRepository()
	uc := usecase.NewListLeadsUseCase(repo)

	view, err := uc.Execute(context.Background(), usecase.LeadQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, view.TotalCount)

	seedLead(t, repo)
	view, err = uc.Execute(context.Background(), usecase.LeadQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, view.TotalCount)
}

func TestListLeadsWrapsStoreFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("FindAll", mock.Anything).Return(nil, errors.New("db down"))

	_, err := usecase.NewListLeadsUseCase(repo).Execute(context.Background(), usecase.LeadQuery{})
	assert.True(t, usecase.IsTechnicalError(err))
}
