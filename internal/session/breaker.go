package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/config"
	"github.com/xxxsen/inkwell/internal/metrics"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
)

// WithBreaker guards p with a circuit breaker. While the breaker is open
// saves fail fast with errors.ErrUnavailable instead of waiting on storage.
// Validation and not-found failures do not count against the breaker.
func WithBreaker(name string, p Persister, cfg config.BreakerConfig) Persister {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logutil.GetLogger(context.Background()).Warn("persist breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.SetBreakerState(name, int(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, appErr.ErrNotFound) || errors.Is(err, appErr.ErrInvalid) ||
				errors.Is(err, context.Canceled)
		},
	})
	return &breakerPersister{next: p, cb: cb}
}

type breakerPersister struct {
	next Persister
	cb   *gobreaker.CircuitBreaker
}

func (b *breakerPersister) PersistDocument(ctx context.Context, docID string, in PersistInput) (*PersistResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.PersistDocument(ctx, docID, in)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", appErr.ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return res.(*PersistResult), nil
}
