// Package service resolves fluid-property profiles for completions by chaining
// snapshot selection and pressure resolution.
package service

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pvt-resolver/internal/domain"
	"pvt-resolver/internal/observability"
	"pvt-resolver/internal/resolver"
	"pvt-resolver/internal/snapshot"
	"pvt-resolver/internal/storage"
)

// ErrInvalidRequest is returned for requests missing a completion or date.
var ErrInvalidRequest = eris.New("invalid resolution request")

// Service answers resolution requests against a sample store.
// It holds no per-request state and is safe for concurrent use when the
// store is.
type Service struct {
	selector *snapshot.Selector
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics overrides the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger overrides the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service reading samples from store.
func New(store storage.SampleStore, opts ...Option) *Service {
	s := &Service{
		metrics: observability.DefaultMetrics,
		logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.selector = snapshot.NewSelector(store, s.logger)
	return s
}

// Resolve returns the profile of req.CompletionID at req.TargetPressure as of req.AsOf.
// A completion without active samples yields the all-absent no_data result.
// Store failures and invalid input are returned as errors.
func (s *Service) Resolve(ctx context.Context, req domain.Request) (domain.Result, error) {
	if req.CompletionID == "" || req.AsOf.IsZero() {
		return domain.Result{}, ErrInvalidRequest
	}

	start := time.Now()
	log := s.logger.With(
		zap.String("completion_id", req.CompletionID),
		zap.Float64("target_pressure", req.TargetPressure),
		zap.Time("as_of", req.AsOf),
	)

	snap, err := s.selector.Select(ctx, req.CompletionID, req.AsOf)
	if err != nil {
		s.metrics.RecordResolutionError("select")
		log.Error("select snapshot failed", zap.Error(err))
		return domain.Result{}, eris.Wrap(err, "service: select snapshot")
	}

	result, err := resolver.Resolve(snap.Samples, req.TargetPressure)
	if err != nil {
		s.metrics.RecordResolutionError("resolve")
		log.Warn("resolve failed", zap.Error(err))
		return domain.Result{}, eris.Wrap(err, "service: resolve")
	}
	result.CompletionID = req.CompletionID
	result.SnapshotDate = snap.Date

	s.metrics.RecordResolution(result.Case.String(), len(snap.Samples), time.Since(start).Seconds())
	log.Debug("resolved",
		zap.String("case", result.Case.String()),
		zap.Time("snapshot_date", snap.Date),
		zap.Int("active_samples", len(snap.Samples)),
	)

	return result, nil
}
