package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/visa-leads/internal/usecase"
)

func TestTransactionRunsAllSteps(t *testing.T) {
	var ran []string
	txn := usecase.NewTransaction(zerolog.Nop())
	txn.AddStep("one", func(context.Context) error { ran = append(ran, "one"); return nil }, nil)
	txn.AddStep("two", func(context.Context) error { ran = append(ran, "two"); return nil }, nil)

	require.NoError(t, txn.Execute(context.Background()))
	assert.Equal(t, []string{"one", "two"}, ran)
}

func TestTransactionCompensatesInReverseOrder(t *testing.T) {
	var undone []string
	boom := errors.New("boom")

	txn := usecase.NewTransaction(zerolog.Nop())
	txn.AddStep("a", func(context.Context) error { return nil }, func(context.Context) error {
		undone = append(undone, "a")
		return nil
	})
	txn.AddStep("b", func(context.Context) error { return nil }, nil)
	txn.AddStep("c", func(context.Context) error { return nil }, func(context.Context) error {
		undone = append(undone, "c")
		return nil
	})
	txn.AddStep("d", func(context.Context) error { return boom }, func(context.Context) error {
		undone = append(undone, "d")
		return nil
	})

	err := txn.Execute(context.Background())

	var stepErr *usecase.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "d", stepErr.Step)
	assert.Equal(t, 2, stepErr.RolledBack)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"c", "a"}, undone)
}

func TestTransactionCompensatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensateErr error

	txn := usecase.NewTransaction(zerolog.Nop())
	txn.AddStep("upload", func(context.Context) error { return nil }, func(ctx context.Context) error {
		compensateErr = ctx.Err()
		return nil
	})
	txn.AddStep("store", func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}, nil)

	err := txn.Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, compensateErr)
}

func TestTransactionKeepsGoingWhenCompensationFails(t *testing.T) {
	var undone []string
	txn := usecase.NewTransaction(zerolog.Nop())
	txn.AddStep("a", func(context.Context) error { return nil }, func(context.Context) error {
		undone = append(undone, "a")
		return nil
	})
	txn.AddStep("b", func(context.Context) error { return nil }, func(context.Context) error {
		return errors.New("cannot undo")
	})
	txn.AddStep("c", func(context.Context) error { return errors.New("fail") }, nil)

	err := txn.Execute(context.Background())

	var stepErr *usecase.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.RolledBack)
	assert.Equal(t, []string{"a"}, undone)
}
