package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_ExecutesForward(t *testing.T) {
	var order []string

	saga := NewSaga().
		AddStep(Step{Name: "a", Action: func(ctx context.Context) error {
			order = append(order, "a")
			return nil
		}}).
		AddStep(Step{Name: "b", Action: func(ctx context.Context) error {
			order = append(order, "b")
			return nil
		}})

	require.NoError(t, saga.Execute(context.Background()))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestSaga_CompensatesInReverse(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	saga := NewSaga().
		AddStep(Step{
			Name:       "a",
			Action:     func(ctx context.Context) error { order = append(order, "a"); return nil },
			Compensate: func(ctx context.Context) error { order = append(order, "undo-a"); return nil },
		}).
		AddStep(Step{
			Name:       "b",
			Action:     func(ctx context.Context) error { order = append(order, "b"); return nil },
			Compensate: func(ctx context.Context) error { order = append(order, "undo-b"); return nil },
		}).
		AddStep(Step{
			Name:   "c",
			Action: func(ctx context.Context) error { return boom },
		})

	err := saga.Execute(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b", "undo-b", "undo-a"}, order)
}

func TestSaga_ReportsFailedCompensation(t *testing.T) {
	saga := NewSaga().
		AddStep(Step{
			Name:       "a",
			Action:     func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { return errors.New("undo failed") },
		}).
		AddStep(Step{
			Name:   "b",
			Action: func(ctx context.Context) error { return errors.New("boom") },
		})

	err := saga.Execute(context.Background())
	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, []string{"a"}, compErr.FailedSteps)
}
