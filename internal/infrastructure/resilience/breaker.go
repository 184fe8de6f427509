package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while calls are being rejected.
var ErrOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Outcome is how a guarded call ended.
type Outcome int

const (
	// Success resets the failure streak.
	Success Outcome = iota
	// Failure counts towards opening the breaker.
	Failure
	// Ignored releases the call without affecting state, e.g. when the
	// caller cancelled it.
	Ignored
)

// DefaultCooldown is used when Settings.Cooldown is zero.
const DefaultCooldown = 30 * time.Second

// Settings configures the circuit breaker behavior
type Settings struct {
	// Threshold is the number of consecutive failed calls that opens the
	// breaker. Zero disables the breaker.
	Threshold uint32
	// Cooldown is how long the breaker stays open before one probe call
	// is let through.
	Cooldown time.Duration
	// OnStateChange is called with the lock held whenever the state changes
	OnStateChange func(from, to State)
}

// Breaker rejects calls after a run of failures and lets a single probe
// through once the cooldown has passed. A nil *Breaker allows everything.
type Breaker struct {
	settings Settings

	mu       sync.Mutex
	state    State
	failures uint32
	probing  bool
	openedAt time.Time
}

// New creates a breaker, or returns nil when settings.Threshold is zero.
func New(settings Settings) *Breaker {
	if settings.Threshold == 0 {
		return nil
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultCooldown
	}
	return &Breaker{settings: settings}
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	if b == nil {
		return StateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current(time.Now())
}

// Failures returns the current run of consecutive failures.
func (b *Breaker) Failures() uint32 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Allow reports whether a call may proceed. Every nil return must be
// matched by exactly one Done.
func (b *Breaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current(time.Now()) {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

// Done records the outcome of a call admitted by Allow.
func (b *Breaker) Done(outcome Outcome) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current(time.Now())
	if state == StateHalfOpen {
		b.probing = false
	}

	switch outcome {
	case Success:
		b.failures = 0
		if state == StateHalfOpen {
			b.setState(StateClosed)
		}
	case Failure:
		switch state {
		case StateClosed:
			b.failures++
			if b.failures >= b.settings.Threshold {
				b.open()
			}
		case StateHalfOpen:
			b.open()
		}
	}
}

// current moves an expired open breaker to half-open.
func (b *Breaker) current(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.settings.Cooldown {
		b.setState(StateHalfOpen)
		b.probing = false
	}
	return b.state
}

func (b *Breaker) open() {
	b.openedAt = time.Now()
	b.setState(StateOpen)
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	if state == StateClosed {
		b.failures = 0
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(prev, state)
	}
}
