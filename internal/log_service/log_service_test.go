package log_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLevelValue(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"DEBUG", DebugLevelValue},
		{"info", InfoLevelValue},
		{" Warn ", WarnLevelValue},
		{"ERROR", ErrorLevelValue},
		{"verbose", DebugLevelValue},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetLevelValue(tt.level), tt.level)
	}
}

func TestIsValidLevel(t *testing.T) {
	assert.True(t, IsValidLevel("info"))
	assert.True(t, IsValidLevel("ERROR"))
	assert.False(t, IsValidLevel("loud"))
	assert.False(t, IsValidLevel(""))
}
