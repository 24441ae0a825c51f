package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{PlatformStatusPending, PlatformStatusPublishing, true},
		{PlatformStatusPublishing, PlatformStatusPublished, true},
		{PlatformStatusPublishing, PlatformStatusFailed, true},
		{PlatformStatusPending, PlatformStatusFailed, true},

		// Re-writing a non-terminal status is allowed for redeliveries.
		{PlatformStatusPublishing, PlatformStatusPublishing, true},
		{PlatformStatusPending, PlatformStatusPending, true},

		// Terminal states never move.
		{PlatformStatusPublished, PlatformStatusFailed, false},
		{PlatformStatusPublished, PlatformStatusPublishing, false},
		{PlatformStatusFailed, PlatformStatusPublished, false},
		{PlatformStatusFailed, PlatformStatusPending, false},

		// No going backwards.
		{PlatformStatusPublishing, PlatformStatusPending, false},

		{"bogus", PlatformStatusPublished, false},
		{PlatformStatusPending, "bogus", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminalPlatformStatus(t *testing.T) {
	assert.True(t, IsTerminalPlatformStatus(PlatformStatusPublished))
	assert.True(t, IsTerminalPlatformStatus(PlatformStatusFailed))
	assert.False(t, IsTerminalPlatformStatus(PlatformStatusPending))
	assert.False(t, IsTerminalPlatformStatus(PlatformStatusPublishing))
}
