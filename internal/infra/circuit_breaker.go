package infra

import (
	"errors"
	"sync"
	"time"
)

// CircuitBreaker guards outbound SMTP calls. After `threshold` consecutive
// failures it opens and fails fast; once `cooldown` elapses a single probe
// call is let through, and its outcome decides whether the breaker closes
// again or stays open for another cooldown.

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // normal, calls flow
	CBOpen                    // tripped, fast-fail all calls
	CBHalfOpen                // cooldown elapsed, one probe allowed
)

// String returns a human-readable state name (for health endpoints / logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker abierto: servicio externo no disponible")

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     CBState
	failures  int
	openedAt  time.Time
	probing   bool
	threshold int
	cooldown  time.Duration
}

// NewCircuitBreaker creates a breaker in closed state.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{state: CBClosed, threshold: threshold, cooldown: cooldown}
}

// State returns the current state (safe for concurrent reads).
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

// stateLocked applies the open -> half-open transition. Callers hold the lock.
func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && time.Since(cb.openedAt) >= cb.cooldown {
		cb.state = CBHalfOpen
	}
	return cb.state
}

// Execute runs fn through the breaker. Returns ErrCircuitOpen immediately
// when the breaker is open, or while another goroutine holds the half-open
// probe slot.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	switch cb.stateLocked() {
	case CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.probing {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false

	if err != nil {
		cb.failures++
		if cb.state == CBHalfOpen || cb.failures >= cb.threshold {
			cb.state = CBOpen
			cb.openedAt = time.Now()
			cb.failures = 0
		}
		return err
	}

	cb.state = CBClosed
	cb.failures = 0
	return nil
}
