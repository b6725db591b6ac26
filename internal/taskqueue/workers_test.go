package taskqueue

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv("TIDY_WORKERS", "")

	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound", 1.0, 0, 1, available},
		{"I/O-bound", 2.0, 0, 1, available * 2},
		{"capped by limit", 2.0, 2, 1, 2},
		{"tiny multiplier still returns one", 0.01, 0, 1, available},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
	}{
		{"valid override", "8", 0, 8},
		{"override capped by limit", "20", 10, 10},
		{"override below limit", "5", 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TIDY_WORKERS", tt.envValue)
			if got := Count(1.0, tt.limit); got != tt.expected {
				t.Errorf("Count with TIDY_WORKERS=%s = %d, expected %d",
					tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestCountInvalidOverride(t *testing.T) {
	t.Setenv("TIDY_WORKERS", "not-a-number")

	got := Count(1.0, 0)
	if got < 1 {
		t.Errorf("Count with invalid override = %d, expected at least 1", got)
	}
}
