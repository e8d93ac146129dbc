package session

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/typesprint/internal/model"
)

// DefaultSubmitTimeout bounds a synchronous score submission.
const DefaultSubmitTimeout = 5 * time.Second

// ErrOffline is reported by the offline dispatcher.
var ErrOffline = errors.New("scoring disabled")

// Scorer persists a finished session and returns the authoritative best.
type Scorer interface {
	SaveScore(ctx context.Context, req model.ScoreRequest) (model.ScoreResponse, error)
}

// Dispatcher submits a score and reports the outcome through done. Hosts with an
// event loop must call done on that loop.
type Dispatcher interface {
	Dispatch(req model.ScoreRequest, done func(model.ScoreResponse, error))
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(req model.ScoreRequest, done func(model.ScoreResponse, error))

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(req model.ScoreRequest, done func(model.ScoreResponse, error)) {
	f(req, done)
}

// Synchronous calls scorer inline and delivers the result before returning.
func Synchronous(scorer Scorer, timeout time.Duration) Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return DispatcherFunc(func(req model.ScoreRequest, done func(model.ScoreResponse, error)) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		done(scorer.SaveScore(ctx, req))
	})
}

// Offline never reaches a service; results fall back to local values.
func Offline() Dispatcher {
	return DispatcherFunc(func(_ model.ScoreRequest, done func(model.ScoreResponse, error)) {
		done(model.ScoreResponse{}, ErrOffline)
	})
}
