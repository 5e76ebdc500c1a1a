// Package mood holds the outbound clients for the text-mood LLM and the
// image emotion classifier. Both run behind a circuit breaker.
package mood

import (
	"errors"
	"log/slog"
	"time"

	"moodmate/internal/middleware"
	"moodmate/internal/observability"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Upstream service names, also used as metric labels.
const (
	ServiceGroq       = "groq"
	ServiceClassifier = "emotion-classifier"
)

var (
	// ErrUnavailable reports that the breaker is open or the upstream failed.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrMissingAPIKey reports that the LLM client has no credentials.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrEmptyInput reports an empty text or image payload.
	ErrEmptyInput = errors.New("empty input")
)

// RejectedError carries a message the upstream wants shown to the user,
// such as the safety check verdict or a classifier validation error.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

type breakerSettings struct {
	minRequests  uint32
	failureRatio float64
	openTimeout  time.Duration
}

var defaultBreakerSettings = breakerSettings{
	minRequests:  5,
	failureRatio: 0.6,
	openTimeout:  30 * time.Second,
}

func newBreaker[T any](name string, s breakerSettings) *gobreaker.CircuitBreaker[T] {
	observability.BreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.failureRatio
		},
		// User-caused rejections must not trip the breaker.
		IsSuccessful: func(err error) bool {
			var rejected *RejectedError
			return err == nil || errors.As(err, &rejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			middleware.Logger.Warn("circuit breaker state change",
				slog.String("service", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			observability.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// breakerErr folds breaker rejections into ErrUnavailable.
func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
