package timeutil

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		expected  time.Duration
	}{
		{"empty", nil, 0},
		{"single", []time.Duration{250 * time.Millisecond}, 250 * time.Millisecond},
		{"page delay wins", []time.Duration{100 * time.Millisecond, 0}, 100 * time.Millisecond},
		{"backoff wins", []time.Duration{100 * time.Millisecond, 4 * time.Second}, 4 * time.Second},
		{"negative values", []time.Duration{-3, -1, -2}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaxDuration(tt.durations))
		})
	}
}

func TestMaxDurationLeavesInputUntouched(t *testing.T) {
	input := []time.Duration{3 * time.Second, time.Second, 2 * time.Second}

	_ = MaxDuration(input)

	assert.Equal(t, []time.Duration{3 * time.Second, time.Second, 2 * time.Second}, input)
}

func TestComputeJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		jitter := ComputeJitter(50*time.Millisecond, rng)
		assert.GreaterOrEqual(t, jitter, time.Duration(0))
		assert.Less(t, jitter, 50*time.Millisecond)
	}
}

func TestComputeJitter_Disabled(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	assert.Equal(t, time.Duration(0), ComputeJitter(0, rng))
	assert.Equal(t, time.Duration(0), ComputeJitter(-time.Second, rng))
	assert.Equal(t, time.Duration(0), ComputeJitter(time.Second, nil))
}

func TestComputeJitter_SameSeedSameSequence(t *testing.T) {
	first := rand.New(rand.NewSource(7))
	second := rand.New(rand.NewSource(7))

	for i := 0; i < 10; i++ {
		assert.Equal(t, ComputeJitter(time.Second, first), ComputeJitter(time.Second, second))
	}
}

// asset retries wait 1s, 2s, 3s ... up to the configured ceiling
func TestLinearBackoffDelay(t *testing.T) {
	param := NewBackoffParam(time.Second, 1, 10*time.Second)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second},
		{10, 10 * time.Second},
		{25, 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LinearBackoffDelay(tt.attempt, 0, nil, param), "attempt %d", tt.attempt)
	}
}

func TestLinearBackoffDelay_Uncapped(t *testing.T) {
	param := NewBackoffParam(500*time.Millisecond, 1, 0)

	assert.Equal(t, 20*time.Second, LinearBackoffDelay(40, 0, nil, param))
}

// the page limiter doubles its delay after every 429 or 5xx
func TestExponentialBackoffDelay(t *testing.T) {
	param := NewBackoffParam(time.Second, 2, 10*time.Second)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{60, 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExponentialBackoffDelay(tt.attempt, 0, nil, param), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffDelay_WithJitter(t *testing.T) {
	param := NewBackoffParam(100*time.Millisecond, 3, time.Minute)
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 50; i++ {
		delay := ExponentialBackoffDelay(3, 20*time.Millisecond, rng, param)
		assert.GreaterOrEqual(t, delay, 900*time.Millisecond)
		assert.Less(t, delay, 920*time.Millisecond)
	}
}

func TestBackoffParamGetters(t *testing.T) {
	param := NewBackoffParam(time.Second, 1.5, time.Minute)

	assert.Equal(t, time.Second, param.InitialDuration())
	assert.Equal(t, 1.5, param.Multiplier())
	assert.Equal(t, time.Minute, param.MaxDuration())
}
