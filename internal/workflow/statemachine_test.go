package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	// pending 可以前进到任一状态,包括保持 pending
	assert.True(t, CanTransition(StatusPending, StatusPending))
	assert.True(t, CanTransition(StatusPending, StatusCompleted))
	assert.True(t, CanTransition(StatusPending, StatusRejected))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
}

func TestCanTransitionTerminalStates(t *testing.T) {
	terminals := []InstanceStatus{StatusCompleted, StatusRejected, StatusCancelled}
	targets := []InstanceStatus{StatusPending, StatusCompleted, StatusRejected, StatusCancelled}

	for _, from := range terminals {
		for _, to := range targets {
			assert.False(t, CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("archived", StatusPending))
}

func TestInstanceStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestProcessActionIsResolving(t *testing.T) {
	assert.True(t, ActionApprove.IsResolving())
	assert.True(t, ActionReject.IsResolving())

	// pending 和 auto 只能由引擎写入,不接受外部提交
	assert.False(t, ActionPending.IsResolving())
	assert.False(t, ActionAuto.IsResolving())
}
