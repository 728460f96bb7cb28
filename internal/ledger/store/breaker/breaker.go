// Package breaker guards a remote ledger store with a circuit breaker.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"assetcore/internal/ledger"
	"assetcore/pkg/platform/sentinel"
)

// Settings configures the breaker. Only unavailability counts as a failure;
// not-found, conflicts and rejected builds leave the breaker closed.
type Settings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Store wraps a ledger.Store. While open, calls fail fast with
// sentinel.ErrUnavailable.
type Store struct {
	next ledger.Store
	cb   *gobreaker.CircuitBreaker
}

func New(next ledger.Store, cfg Settings, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isUnavailable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ledger store circuit changed state",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &Store{next: next, cb: cb}
}

func isUnavailable(err error) bool {
	return errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// State reports the breaker state, e.g. "closed" or "open".
func (s *Store) State() string {
	return s.cb.State().String()
}

func execute[T any](s *Store, fn func() (T, error)) (T, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, errors.Join(err, sentinel.ErrUnavailable)
		}
		return zero, err
	}
	return res.(T), nil
}

func (s *Store) Append(ctx context.Context, assetID string, build ledger.BuildFunc) (*ledger.Event, error) {
	return execute(s, func() (*ledger.Event, error) { return s.next.Append(ctx, assetID, build) })
}

func (s *Store) History(ctx context.Context, assetID string) ([]ledger.Event, error) {
	return execute(s, func() ([]ledger.Event, error) { return s.next.History(ctx, assetID) })
}

func (s *Store) Get(ctx context.Context, eventID string) (*ledger.Event, error) {
	return execute(s, func() (*ledger.Event, error) { return s.next.Get(ctx, eventID) })
}

func (s *Store) Tip(ctx context.Context, assetID string) (*ledger.Tip, error) {
	return execute(s, func() (*ledger.Tip, error) { return s.next.Tip(ctx, assetID) })
}
