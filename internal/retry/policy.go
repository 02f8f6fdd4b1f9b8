package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff spaces out attempts: Base grows by Factor after every failure, is
// capped at Cap, and is spread by ±Jitter.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Factor float64
	Jitter float64
}

// Wait is the pause before retry number n (0 for the first retry).
func (b Backoff) Wait(n int) time.Duration {
	factor := b.Factor
	if factor < 1 {
		factor = 1
	}
	wait := float64(b.Base) * math.Pow(factor, float64(max(n, 0)))
	if b.Cap > 0 {
		wait = min(wait, float64(b.Cap))
	}
	if b.Jitter > 0 {
		wait += wait * b.Jitter * (2*rand.Float64() - 1)
	}
	return time.Duration(wait)
}

// Policy bounds how often a request is attempted and how long to wait in
// between.
type Policy struct {
	// Attempts counts the first try. Anything below 1 means a single try.
	Attempts int
	Backoff  Backoff
}

// Default is five attempts with waits starting at half a second and capped
// at twenty.
func Default() Policy {
	return Policy{
		Attempts: 5,
		Backoff: Backoff{
			Base:   500 * time.Millisecond,
			Cap:    20 * time.Second,
			Factor: 2,
			Jitter: 0.2,
		},
	}
}

// WithAttempts returns a copy of p with the attempt limit set to n.
func (p Policy) WithAttempts(n int) Policy {
	p.Attempts = max(n, 1)
	return p
}

func (p Policy) attempts() int {
	return max(p.Attempts, 1)
}
