package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trace struct{ calls []string }

func (tr *trace) step(name string, failWith error) *FuncStep {
	return NewStep(name,
		func(context.Context) error {
			tr.calls = append(tr.calls, "exec:"+name)
			return failWith
		},
		func(context.Context) error {
			tr.calls = append(tr.calls, "undo:"+name)
			return nil
		},
	)
}

func TestStart_RunsAllStepsInOrder(t *testing.T) {
	tr := &trace{}

	err := NewOrchestrator("PB000001", tr.step("a", nil), tr.step("b", nil), tr.step("c", nil)).
		Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c"}, tr.calls)
}

func TestStart_CompensatesSucceededStepsInReverse(t *testing.T) {
	tr := &trace{}
	boom := errors.New("boom")

	err := NewOrchestrator("PB000001", tr.step("a", nil), tr.step("b", nil), tr.step("c", boom), tr.step("d", nil)).
		Start(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "c: boom")
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "undo:b", "undo:a"}, tr.calls)
}

func TestStart_CompensationErrorKeepsStepError(t *testing.T) {
	boom := errors.New("boom")
	undone := false
	first := NewStep("first",
		func(context.Context) error { return nil },
		func(context.Context) error { undone = true; return errors.New("undo failed") },
	)
	second := NewStep("second", func(context.Context) error { return boom }, nil)

	err := NewOrchestrator("run", first, second).Start(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.True(t, undone)
}

func TestFuncStep_NilCompensate(t *testing.T) {
	s := NewStep("noop", func(context.Context) error { return nil }, nil)

	assert.NoError(t, s.Compensate(context.Background()))
	assert.Equal(t, "noop", s.Name())
}
