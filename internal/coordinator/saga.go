package coordinator

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is a single unit of work with a compensating action that undoes it.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Status is the lifecycle state reported in the orchestrator's log lines.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Orchestrator runs a fixed list of steps in order.
type Orchestrator struct {
	name  string
	steps []Step
}

// NewOrchestrator names the run so its log lines can be grouped, e.g. by
// tracking code.
func NewOrchestrator(name string, steps ...Step) *Orchestrator {
	return &Orchestrator{name: name, steps: steps}
}

// Start runs the steps sequentially. When a step fails, every step that
// already succeeded is compensated in reverse order and the step's error is
// returned. The failing step itself is not compensated.
func (o *Orchestrator) Start(ctx context.Context) error {
	log := slog.With("run", o.name)
	log.DebugContext(ctx, "run started", "status", StatusStarted, "steps", len(o.steps))

	done := make([]Step, 0, len(o.steps))
	for _, step := range o.steps {
		if err := step.Execute(ctx); err != nil {
			log.WarnContext(ctx, "step failed, compensating",
				"status", StatusCompensating,
				"step", step.Name(),
				"error", err,
			)
			o.rollback(ctx, log, done)
			log.InfoContext(ctx, "run failed", "status", StatusFailed, "step", step.Name())
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		log.DebugContext(ctx, "step done", "status", StatusStepDone, "step", step.Name())
		done = append(done, step)
	}

	log.DebugContext(ctx, "run completed", "status", StatusCompleted)
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, log *slog.Logger, steps []Step) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			log.ErrorContext(ctx, "compensation failed", "step", step.Name(), "error", err)
		}
	}
}
