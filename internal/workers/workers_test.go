package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "Mixed task (1.5x multiplier)",
			multiplier: 1.5,
			limit:      0,
			minExpect:  1,
			maxExpect:  max(1, int(float64(availableCPU)*1.5)),
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier",
			multiplier: 0.1,
			limit:      0,
			minExpect:  1,
			maxExpect:  max(1, int(float64(availableCPU)*0.1)),
		},
		{
			name:       "Zero multiplier",
			multiplier: 0,
			limit:      0,
			minExpect:  1,
			maxExpect:  1,
		},
		{
			name:       "Negative multiplier",
			multiplier: -1,
			limit:      0,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int // 0 means fall back to the GOMAXPROCS calculation
	}{
		{name: "Valid override", envValue: "8", limit: 0, expected: 8},
		{name: "Override with limit", envValue: "20", limit: 10, expected: 10},
		{name: "Override below limit", envValue: "5", limit: 10, expected: 5},
		{name: "Invalid override (non-numeric)", envValue: "invalid", limit: 0},
		{name: "Invalid override (zero)", envValue: "0", limit: 0},
		{name: "Invalid override (negative)", envValue: "-5", limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.envValue)

			got := Count(1.0, tt.limit)

			if tt.expected == 0 {
				if want := max(1, runtime.GOMAXPROCS(0)); got != want {
					t.Errorf("Count with %s=%q = %d, want fallback %d", OverrideEnv, tt.envValue, got, want)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("Count(1.0, %d) with %s=%s = %d, want %d", tt.limit, OverrideEnv, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestForCPU(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	tests := []struct {
		name    string
		limit   int
		wantMax int
	}{
		{name: "No limit", limit: 0, wantMax: runtime.GOMAXPROCS(0)},
		{name: "With limit of 4", limit: 4, wantMax: 4},
		{name: "With limit of 1", limit: 1, wantMax: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForCPU(tt.limit)
			if got < 1 || got > tt.wantMax {
				t.Errorf("ForCPU(%d) = %d, want between 1 and %d", tt.limit, got, tt.wantMax)
			}
		})
	}
}

func TestForMixed(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	got := ForMixed(0)
	want := max(1, int(float64(runtime.GOMAXPROCS(0))*1.5))
	if got != want {
		t.Errorf("ForMixed(0) = %d, want %d", got, want)
	}

	if got := ForMixed(3); got > 3 {
		t.Errorf("ForMixed(3) = %d, should not exceed limit", got)
	}
}

func BenchmarkCount(b *testing.B) {
	b.Run("No override", func(b *testing.B) {
		b.Setenv(OverrideEnv, "")
		for i := 0; i < b.N; i++ {
			_ = Count(1.5, 10)
		}
	})

	b.Run("With override", func(b *testing.B) {
		b.Setenv(OverrideEnv, "8")
		for i := 0; i < b.N; i++ {
			_ = Count(1.5, 10)
		}
	})
}
