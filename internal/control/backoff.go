package control

import "time"

// Reconnect policy
const (
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxDelay   = 60 * time.Second
	DefaultMaxRetries = 100
	DefaultJitter     = 0.25
)

// Backoff computes exponential reconnect delays with uniform jitter.
// It is owned by a single goroutine.
type Backoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int
	Jitter     float64

	retries int
	random  func() float64 // uniform in [0, 1)
}

// NewBackoff returns the default policy; random drives the jitter
func NewBackoff(random func() float64) *Backoff {
	return &Backoff{
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		MaxRetries: DefaultMaxRetries,
		Jitter:     DefaultJitter,
		random:     random,
	}
}

// Next records one failure and returns the delay before the next attempt.
// ok is false once more than MaxRetries consecutive failures were recorded.
func (b *Backoff) Next() (delay time.Duration, ok bool) {
	b.retries++
	if b.retries > b.MaxRetries {
		return 0, false
	}

	d := b.delay(b.retries)
	if b.Jitter > 0 && b.random != nil {
		// scale by a factor in [1-Jitter, 1+Jitter)
		f := 1 + b.Jitter*(2*b.random()-1)
		d = time.Duration(float64(d) * f)
	}
	return d, true
}

// delay is min(BaseDelay * 2^(n-1), MaxDelay) without jitter
func (b *Backoff) delay(n int) time.Duration {
	d := b.BaseDelay
	for i := 1; i < n; i++ {
		if d >= b.MaxDelay {
			break
		}
		d *= 2
	}
	if d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Reset clears the failure count after a successful poll
func (b *Backoff) Reset() {
	b.retries = 0
}

// Retries returns the number of consecutive failures
func (b *Backoff) Retries() int {
	return b.retries
}
