package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Transaction runs a sequence of steps and, when one fails, undoes the steps
// that already succeeded in reverse order.
type Transaction struct {
	steps []Step
	log   zerolog.Logger
}

type Step struct {
	Name       string
	Run        func(context.Context) error
	Compensate func(context.Context) error
}

// StepError reports which step broke the transaction.
type StepError struct {
	Step       string
	RolledBack int
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed: %v (rolled back %d steps)", e.Step, e.Err, e.RolledBack)
}

func (e *StepError) Unwrap() error { return e.Err }

func NewTransaction(log zerolog.Logger) *Transaction {
	return &Transaction{log: log}
}

// AddStep appends a step. compensate may be nil when the step has nothing to undo.
func (t *Transaction) AddStep(name string, run, compensate func(context.Context) error) {
	t.steps = append(t.steps, Step{Name: name, Run: run, Compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, step := range t.steps {
		if err := step.Run(ctx); err != nil {
			return &StepError{Step: step.Name, RolledBack: t.rollback(ctx, i), Err: err}
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) int {
	// Compensations must run even when the request context is already gone.
	ctx = context.WithoutCancel(ctx)

	undone := 0
	for i := failedAt - 1; i >= 0; i-- {
		step := t.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			t.log.Warn().Err(err).Str("step", step.Name).Msg("compensation failed, manual cleanup needed")
			continue
		}
		undone++
	}
	return undone
}
