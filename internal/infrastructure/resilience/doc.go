/*
Package resilience provides the circuit breaker that guards API calls.

A run of failed calls (server errors or connection faults, after retries)
opens the breaker. While open, calls fail immediately instead of waiting on
an unhealthy service. After the cooldown one probe call is let through: its
success closes the breaker, its failure opens it again.

# Usage

	breaker := resilience.New(resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		OnStateChange: func(from, to resilience.State) {
			logger.Warn("circuit breaker", zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	if err := breaker.Allow(); err != nil {
		return err
	}
	err := call()
	breaker.Done(outcomeOf(err))

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[success]-> Closed
	                                                        |
	                                                   [failure]
	                                                        |
	                                                        v
	                                                      Open
*/
package resilience
