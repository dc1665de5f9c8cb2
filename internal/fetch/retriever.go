package fetch

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/sekaiwx/vissrview/internal/satellite"
)

// BackoffConfig controls exponential backoff behaviour between attempts.
type BackoffConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is the stock retry budget: three attempts, 500ms initial
// delay doubling up to 5s.
var DefaultBackoff = BackoffConfig{
	MaxAttempts:     3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// Retriever wraps a Transport with retries, exponential backoff, and a
// circuit breaker guarding the archive host.
type Retriever struct {
	transport Transport
	backoff   BackoffConfig
	breaker   *gobreaker.CircuitBreaker
}

// NewRetriever builds a Retriever around the given transport.
func NewRetriever(transport Transport, backoff BackoffConfig) *Retriever {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "archive-ftp",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Retriever{transport: transport, backoff: backoff, breaker: cb}
}

// Fetch retrieves the archive at loc, retrying transient failures up to the
// budget. It returns the raw bytes and the byte count; downstream stages use
// the count for corruption sanity-checking.
func (r *Retriever) Fetch(ctx context.Context, loc satellite.Locator) ([]byte, int, error) {
	if r.backoff.MaxAttempts <= 0 || r.backoff.InitialInterval <= 0 {
		return nil, 0, errInvalidConfig
	}

	var lastErr error
	for attempt := 1; attempt <= r.backoff.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		result, err := r.breaker.Execute(func() (interface{}, error) {
			return r.transport.Fetch(ctx, loc)
		})
		if err == nil {
			data, ok := result.([]byte)
			if !ok {
				return nil, 0, errors.New("unexpected result type from circuit breaker")
			}
			return data, len(data), nil
		}

		// A missing remote file will stay missing; don't burn the budget.
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, 0, notFound
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, 0, &RetrievalError{Locator: loc.String(), Attempts: attempt, Reason: errCircuitOpen}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, err
		}

		lastErr = err
		log.Warn().Err(err).Str("locator", loc.String()).Int("attempt", attempt).
			Bool("transient", isTransient(err)).Msg("archive fetch failed")

		if attempt == r.backoff.MaxAttempts {
			break
		}

		delay := r.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt-1)))
		if r.backoff.MaxInterval > 0 && delay > r.backoff.MaxInterval {
			delay = r.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, 0, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, 0, &RetrievalError{Locator: loc.String(), Attempts: r.backoff.MaxAttempts, Reason: lastErr}
}

// isTransient classifies connection-level failures by error text; the FTP
// library surfaces dial and transfer problems as plain errors.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sub := range []string{"timeout", "connection refused", "connection reset", "broken pipe", "temporarily"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
