package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(b *Breaker, outcome Outcome) error {
	if err := b.Allow(); err != nil {
		return err
	}
	b.Done(outcome)
	return nil
}

func TestBreakerDisabled(t *testing.T) {
	b := New(Settings{})
	assert.Nil(t, b)

	for i := 0; i < 10; i++ {
		assert.NoError(t, call(b, Failure))
	}
	assert.Equal(t, StateClosed, b.State())
	assert.Zero(t, b.Failures())
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		threshold     uint32
		outcomes      []Outcome
		expectedState State
	}{
		{"stays closed on successes", 2, []Outcome{Success, Success, Success}, StateClosed},
		{"opens after consecutive failures", 3, []Outcome{Failure, Failure, Failure}, StateOpen},
		{"success resets the streak", 3, []Outcome{Failure, Failure, Success, Failure, Failure}, StateClosed},
		{"ignored calls do not count", 2, []Outcome{Failure, Ignored, Ignored}, StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(Settings{Threshold: tt.threshold, Cooldown: time.Minute})

			for _, outcome := range tt.outcomes {
				_ = call(b, outcome)
			}

			assert.Equal(t, tt.expectedState, b.State())
		})
	}
}

func TestBreakerOpenState(t *testing.T) {
	b := New(Settings{Threshold: 2, Cooldown: time.Minute})

	require.NoError(t, call(b, Failure))
	require.NoError(t, call(b, Failure))
	assert.Equal(t, StateOpen, b.State())

	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreakerHalfOpenState(t *testing.T) {
	open := func(t *testing.T) *Breaker {
		b := New(Settings{Threshold: 1, Cooldown: 20 * time.Millisecond})
		require.NoError(t, call(b, Failure))
		require.Equal(t, StateOpen, b.State())
		time.Sleep(30 * time.Millisecond)
		require.Equal(t, StateHalfOpen, b.State())
		return b
	}

	t.Run("single probe", func(t *testing.T) {
		b := open(t)

		require.NoError(t, b.Allow())
		assert.ErrorIs(t, b.Allow(), ErrOpen)
		b.Done(Ignored)

		require.NoError(t, b.Allow())
		b.Done(Ignored)
	})

	t.Run("probe success closes", func(t *testing.T) {
		b := open(t)

		require.NoError(t, call(b, Success))
		assert.Equal(t, StateClosed, b.State())
		assert.Zero(t, b.Failures())
	})

	t.Run("probe failure reopens", func(t *testing.T) {
		b := open(t)

		require.NoError(t, call(b, Failure))
		assert.Equal(t, StateOpen, b.State())
		assert.ErrorIs(t, b.Allow(), ErrOpen)
	})
}

func TestBreakerCallbacks(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)

	b := New(Settings{
		Threshold: 2,
		Cooldown:  10 * time.Millisecond,
		OnStateChange: func(from, to State) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = call(b, Failure)
	_ = call(b, Failure)
	time.Sleep(20 * time.Millisecond)
	_ = call(b, Success)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerConcurrentCalls(t *testing.T) {
	b := New(Settings{Threshold: 1000, Cooldown: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = call(b, Failure)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(100), b.Failures())
	assert.Equal(t, StateClosed, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
