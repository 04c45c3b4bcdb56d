package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// MaxDuration returns the largest value in durations, or zero when empty.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	highest := durations[0]
	for _, d := range durations[1:] {
		if d > highest {
			highest = d
		}
	}
	return highest
}

// ComputeJitter returns a pseudo-random duration in [0, max).
func ComputeJitter(max time.Duration, rng *rand.Rand) time.Duration {
	if max <= 0 || rng == nil {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// LinearBackoffDelay computes initial * attempt, capped at the max duration
// when one is set. Attempts below 1 are treated as 1.
func LinearBackoffDelay(attempt int, jitter time.Duration, rng *rand.Rand, param BackoffParam) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := param.InitialDuration() * time.Duration(attempt)
	if param.MaxDuration() > 0 && delay > param.MaxDuration() {
		delay = param.MaxDuration()
	}
	return delay + ComputeJitter(jitter, rng)
}

// ExponentialBackoffDelay computes initial * multiplier^(attempt-1), capped at
// the max duration, plus jitter. Attempts below 1 are treated as 1.
func ExponentialBackoffDelay(attempt int, jitter time.Duration, rng *rand.Rand, param BackoffParam) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	exponent := float64(attempt - 1)
	delay := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), exponent)
	if param.MaxDuration() > 0 && delay > float64(param.MaxDuration()) {
		delay = float64(param.MaxDuration())
	}
	return time.Duration(delay) + ComputeJitter(jitter, rng)
}
