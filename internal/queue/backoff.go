package queue

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxRetryDelay caps the exponential schedule so a high-attempt job never
// waits more than a few minutes.
const maxRetryDelay = 5 * time.Minute

// RetryDelay computes the wait before redelivering attempt n (1-based):
// base doubled n-1 times, capped at maxRetryDelay. Randomization is off so
// the schedule stays deterministic and testable.
func RetryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = maxRetryDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	delay := base
	for i := 0; i < attempt; i++ {
		delay = bo.NextBackOff()
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
