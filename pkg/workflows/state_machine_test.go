package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	sm := New(map[string][]string{
		"active":  {"claimed", "closed"},
		"claimed": {"returned", "closed"},
	})

	assert.True(t, sm.CanTransition("active", "claimed"))
	assert.True(t, sm.CanTransition("claimed", "returned"))
	assert.False(t, sm.CanTransition("active", "returned"))
	assert.False(t, sm.CanTransition("returned", "active"))
	assert.False(t, sm.CanTransition("unknown", "active"))
}

func TestAllowedTransitions(t *testing.T) {
	sm := New(map[string][]string{
		"active": {"claimed", "closed"},
	})

	assert.Equal(t, []string{"claimed", "closed"}, sm.AllowedTransitions("active"))
	assert.Nil(t, sm.AllowedTransitions("closed"))
}
