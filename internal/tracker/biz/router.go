package biz

import (
	"context"
	"fmt"

	"github.com/dixithak/FileInsights/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RouteStatus what the router did with a notification
type RouteStatus string

const (
	RouteDispatched   RouteStatus = "dispatched"
	RouteUnrecognized RouteStatus = "unrecognized"
	RouteError        RouteStatus = "error"
)

// RouteResult per-notification result of routing
type RouteResult struct {
	ID        string      `json:"id,omitempty"`
	Filepath  string      `json:"filepath"`
	EventType string      `json:"event_type"`
	Status    RouteStatus `json:"status"`
	// Outcome is stored/skipped/failed for creations and archived/not_found for deletions
	Outcome string `json:"outcome,omitempty"`
	Message string `json:"message,omitempty"`

	Err error `json:"-"`
}

// Router dispatches notifications to the creation or deletion processor
type Router struct {
	creation    *CreationProcessor
	deletion    *DeletionProcessor
	logger      *logger.Logger
	concurrency int
}

// NewRouter creates a router. concurrency bounds RouteBatch parallelism; values
// below 1 process the batch sequentially.
func NewRouter(creation *CreationProcessor, deletion *DeletionProcessor, concurrency int, log *logger.Logger) *Router {
	if log == nil {
		log = logger.L()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Router{
		creation:    creation,
		deletion:    deletion,
		logger:      log.Named("router"),
		concurrency: concurrency,
	}
}

// Route handles one notification. Unrecognized event types are logged and
// dropped without error.
func (r *Router) Route(ctx context.Context, n Notification) (result RouteResult) {
	result = RouteResult{ID: n.ID, Filepath: n.Filepath(), EventType: n.EventType}
	if n.ID != "" {
		ctx = logger.WithEventID(ctx, n.ID)
	}
	ctx = logger.WithFilepath(ctx, result.Filepath)

	defer func() {
		if rec := recover(); rec != nil {
			err := &ProcessingError{Filepath: result.Filepath, Err: fmt.Errorf("panic: %v", rec)}
			r.logger.WithContext(ctx).Error("panic while routing event", zap.Error(err), zap.Stack("stacktrace"))
			result.Status = RouteError
			result.Err = err
			result.Message = err.Error()
		}
	}()

	if err := n.Validate(); err != nil {
		result.Status = RouteError
		result.Err = err
		result.Message = err.Error()
		return result
	}

	switch n.Kind() {
	case EventCreated:
		outcome, err := r.creation.OnCreated(ctx, n.Bucket, n.Key)
		result.Outcome = outcome.Kind.String()
		if outcome.Cause != nil {
			result.Message = outcome.Cause.Error()
		}
		r.finish(&result, err)
	case EventDeleted:
		res, err := r.deletion.OnDeleted(ctx, n.Bucket, n.Key)
		if res != nil {
			result.Outcome = string(res.Status)
		}
		r.finish(&result, err)
	default:
		r.logger.WithContext(ctx).Warn("unknown event type", zap.String("event_type", n.EventType))
		result.Status = RouteUnrecognized
	}
	return result
}

func (r *Router) finish(result *RouteResult, err error) {
	if err == nil {
		result.Status = RouteDispatched
		return
	}
	if !IsRetryable(err) {
		err = &ProcessingError{Filepath: result.Filepath, Err: err}
	}
	result.Status = RouteError
	result.Err = err
	result.Message = err.Error()
}

// RouteBatch routes every notification; one failure does not stop the rest.
// Results are returned in input order.
func (r *Router) RouteBatch(ctx context.Context, notifications []Notification) []RouteResult {
	results := make([]RouteResult, len(notifications))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, n := range notifications {
		i, n := i, n
		g.Go(func() error {
			results[i] = r.Route(ctx, n)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
