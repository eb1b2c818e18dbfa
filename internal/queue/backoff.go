package queue

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes the re-queue delay after a failed attempt. The delay grows
// exponentially with the attempt count and is spread by a jitter factor so a
// burst of simultaneous failures does not re-claim in lockstep.
type Backoff struct {
	// Base is the delay before the first retry.
	Base time.Duration
	// Factor multiplies the delay for each subsequent attempt.
	Factor float64
	// Jitter is the fraction J by which the delay is scaled, drawn uniformly
	// from [1-J, 1+J]. Zero disables jitter.
	Jitter float64
}

// Delay returns the wait before a job that has failed the given number of
// attempts becomes claimable again. The result is never below one second.
func (b Backoff) Delay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	base := b.Base.Seconds()
	if base <= 0 {
		base = 1
	}
	factor := b.Factor
	if factor < 1 {
		factor = 1
	}

	seconds := base * math.Pow(factor, float64(attempts))
	if b.Jitter > 0 {
		scale := 1 - b.Jitter + 2*b.Jitter*rand.Float64()
		seconds *= scale
	}

	floored := math.Floor(seconds)
	if floored < 1 {
		floored = 1
	}
	return time.Duration(floored) * time.Second
}

// RetryPolicy bundles the attempt budget with the backoff schedule applied to
// failed jobs.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     Backoff
}
