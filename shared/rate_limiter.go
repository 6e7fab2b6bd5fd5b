package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestBudget bounds a single adapter run: it enforces a politeness delay
// between consecutive network requests and caps the total number of requests
// the run may issue. Exhausting the cap truncates the run rather than
// erroring.
type RequestBudget struct {
	minimumDelay    time.Duration
	remaining       int
	lastRequestTime time.Time
	mutex           sync.Mutex
	requestCount    int64
}

// NewRequestBudget creates a budget for one run with the given request cap
// and minimum delay between requests
func NewRequestBudget(maxRequests int, minimumDelay time.Duration) *RequestBudget {
	return &RequestBudget{
		minimumDelay: minimumDelay,
		remaining:    maxRequests,
	}
}

// Acquire reserves one network request from the budget, sleeping until the
// politeness delay has elapsed since the previous request. It returns false
// once the cap is exhausted; callers must stop issuing requests for the run.
func (b *RequestBudget) Acquire() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.remaining <= 0 {
		logrus.WithFields(logrus.Fields{
			"component":     "RequestBudget",
			"request_count": b.requestCount,
		}).Debug("Request budget exhausted, truncating run")
		return false
	}

	if !b.lastRequestTime.IsZero() {
		elapsedTime := time.Since(b.lastRequestTime)
		if elapsedTime < b.minimumDelay {
			remainingDelay := b.minimumDelay - elapsedTime

			logrus.WithFields(logrus.Fields{
				"component":       "RequestBudget",
				"elapsed_time":    elapsedTime,
				"minimum_delay":   b.minimumDelay,
				"remaining_delay": remainingDelay,
			}).Debug("Enforcing politeness delay")

			time.Sleep(remainingDelay)
		}
	}

	b.lastRequestTime = time.Now()
	b.remaining--
	b.requestCount++
	return true
}

// Remaining returns how many requests the run may still issue
func (b *RequestBudget) Remaining() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.remaining
}

// RequestCount returns the total number of requests acquired so far
func (b *RequestBudget) RequestCount() int64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.requestCount
}
