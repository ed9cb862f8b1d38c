package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusAwaitingProof, initialStatus(OutcomeStrong))
	assert.Equal(t, StatusAwaitingProof, initialStatus(OutcomePartial))
	assert.Equal(t, StatusPendingVerification, initialStatus(OutcomeWeak))
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPendingVerification, StatusApproved},
		{StatusPendingVerification, StatusRejected},
		{StatusAwaitingProof, StatusProofSubmitted},
		{StatusAwaitingProof, StatusApproved},
		{StatusAwaitingProof, StatusRejected},
		{StatusProofSubmitted, StatusProofSubmitted},
		{StatusProofSubmitted, StatusApproved},
		{StatusProofSubmitted, StatusRejected},
		{StatusApproved, StatusCompleted},
	}
	for _, tt := range allowed {
		assert.True(t, canTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPendingVerification, StatusProofSubmitted},
		{StatusPendingVerification, StatusCompleted},
		{StatusAwaitingProof, StatusCompleted},
		{StatusApproved, StatusRejected},
		{StatusApproved, StatusApproved},
		{StatusCompleted, StatusApproved},
		{StatusRejected, StatusApproved},
		{StatusRejected, StatusProofSubmitted},
	}
	for _, tt := range denied {
		assert.False(t, canTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusApproved.Terminal())
	assert.False(t, StatusPendingVerification.Terminal())
}
