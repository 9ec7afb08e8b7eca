package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/visa-leads/internal/entity"
)

func TestParseStatus(t *testing.T) {
	st, err := entity.ParseStatus("Pending")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, st)

	st, err = entity.ParseStatus("Reached Out")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReachedOut, st)

	for _, bad := range []string{"", "pending", "REACHED_OUT", "Closed"} {
		_, err := entity.ParseStatus(bad)
		assert.ErrorIs(t, err, entity.ErrInvalidStatus, bad)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.StatusPending, entity.StatusReachedOut))

	assert.False(t, entity.CanTransition(entity.StatusReachedOut, entity.StatusPending))
	assert.False(t, entity.CanTransition(entity.StatusPending, entity.StatusPending))
	assert.False(t, entity.CanTransition(entity.StatusReachedOut, entity.StatusReachedOut))
	assert.False(t, entity.CanTransition("Archived", entity.StatusReachedOut))
}

func TestLeadTransitionTo(t *testing.T) {
	lead := entity.Lead{ID: "1", Status: entity.StatusPending}

	require.NoError(t, lead.TransitionTo(entity.StatusReachedOut))
	assert.Equal(t, entity.StatusReachedOut, lead.Status)

	// Once reached out there is no way back.
	err := lead.TransitionTo(entity.StatusPending)
	assert.ErrorIs(t, err, entity.ErrIllegalTransition)
	assert.Equal(t, entity.StatusReachedOut, lead.Status)

	err = lead.TransitionTo(entity.StatusReachedOut)
	assert.ErrorIs(t, err, entity.ErrIllegalTransition)
}

func TestLeadCloneDoesNotShareVisas(t *testing.T) {
	lead := entity.Lead{VisasOfInterest: []entity.VisaType{entity.VisaO1}}
	c := lead.Clone()
	c.VisasOfInterest[0] = entity.VisaEB1A

	assert.Equal(t, entity.VisaO1, lead.VisasOfInterest[0])
}

func TestCountryLabel(t *testing.T) {
	label, ok := entity.CountryLabel("south_korea")
	assert.True(t, ok)
	assert.Equal(t, "South Korea", label)

	assert.Len(t, entity.Countries, 10)
	assert.False(t, entity.IsValidCountry("atlantis"))
	assert.False(t, entity.IsValidCountry(entity.UnknownCountry))
}
