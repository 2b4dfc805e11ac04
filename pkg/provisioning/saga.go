package provisioning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Step is one forward action in a provisioning saga, paired with the
// compensation that undoes it. Compensate may be nil for a final step
// that nothing depends on.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga executes steps in order. When a step fails, the compensations
// of every completed step run in reverse order. There is no cross-store
// transaction behind this; compensation is the only consistency
// mechanism, so it is attempted even when it may itself fail.
type Saga struct {
	steps []Step
}

// NewSaga creates an empty saga
func NewSaga() *Saga {
	return &Saga{}
}

// AddStep appends a step to the saga
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// CompensationError reports a saga failure whose rollback also failed,
// leaving orphaned records that need manual repair.
type CompensationError struct {
	StepName    string   // step whose action failed
	FailedSteps []string // steps whose compensation failed
	Cause       error    // the original action error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("step %s failed and compensation failed for [%s]: %v",
		e.StepName, strings.Join(e.FailedSteps, ", "), e.Cause)
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}

// Execute runs the saga. On a step failure it returns the step's error
// after all compensations succeeded, or a *CompensationError when any
// compensation failed too.
func (s *Saga) Execute(ctx context.Context) error {
	var completed []Step

	for _, step := range s.steps {
		if err := step.Action(ctx); err != nil {
			slog.Error("Saga step failed, compensating", "step", step.Name, "completed", len(completed), "err", err)

			var failed []string
			for i := len(completed) - 1; i >= 0; i-- {
				prev := completed[i]
				if prev.Compensate == nil {
					continue
				}
				if cerr := prev.Compensate(ctx); cerr != nil {
					slog.Error("Saga compensation failed, manual cleanup required",
						"step", prev.Name, "failed_step", step.Name, "err", cerr)
					failed = append(failed, prev.Name)
				} else {
					slog.Info("Saga step compensated", "step", prev.Name)
				}
			}

			if len(failed) > 0 {
				return &CompensationError{
					StepName:    step.Name,
					FailedSteps: failed,
					Cause:       err,
				}
			}
			return err
		}
		completed = append(completed, step)
	}
	return nil
}
