// Package service ties schema validation, the engine and the result store
// together for the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/archlint/core/internal/compiler"
	"github.com/archlint/core/internal/dfr"
	"github.com/archlint/core/internal/engine"
	"github.com/archlint/core/internal/metrics"
	"github.com/archlint/core/internal/models"
	"github.com/archlint/core/internal/parser"
	"github.com/archlint/core/internal/rules"
	"github.com/archlint/core/internal/store"
)

// Store is the subset of *store.Store the service needs.
type Store interface {
	Get(ctx context.Context, planHash, engineVersion string) (*store.Record, error)
	PutIfAbsent(ctx context.Context, rec *store.Record) (*store.Record, bool, error)
	Stats(ctx context.Context) (*models.ValidationStats, error)
	Ping() error
}

// Result is a report and whether it was served from the store.
type Result struct {
	Report *models.DFR
	Cached bool
}

type Service struct {
	engine  *engine.Engine
	store   Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(eng *engine.Engine, st Store, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: eng, store: st, metrics: m, logger: logger}
}

func (s *Service) EngineVersion() string { return s.engine.Version() }

// Validate checks plan against the schema, runs the engine and returns the
// stored report for (plan hash, engine version) when one exists. Otherwise
// the fresh report is persisted and returned.
//
// Errors are a *parser.Error (ErrSchema), a *compiler.Error, a
// *rules.EvaluationFault or a store failure.
func (s *Service) Validate(ctx context.Context, plan *models.Plan) (*Result, error) {
	start := time.Now()
	log := s.logger.With(zap.String("request_id", RequestID(ctx)))

	if err := parser.ValidatePlan(plan); err != nil {
		s.observe(metrics.OutcomeInvalidPlan, start)
		log.Info("plan rejected by schema", zap.Error(err))
		return nil, err
	}

	report, err := s.engine.Validate(plan)
	if err != nil {
		s.recordEngineError(log, err, start)
		return nil, err
	}
	log = log.With(
		zap.String("plan_hash", report.PlanHash),
		zap.String("engine_version", report.EngineVersion))

	rec, err := s.store.Get(ctx, report.PlanHash, report.EngineVersion)
	switch {
	case err == nil:
		s.cacheLookup(true)
		s.observe(outcomeOf(rec.Passed), start)
		log.Info("validation served from cache",
			zap.Bool("passed", rec.Passed),
			zap.Duration("duration", time.Since(start)))
		return &Result{Report: rec.DFR(), Cached: true}, nil
	case !errors.Is(err, store.ErrNotFound):
		s.observe(metrics.OutcomeFault, start)
		log.Error("cache lookup failed", zap.Error(err))
		return nil, fmt.Errorf("lookup cached report: %w", err)
	}
	s.cacheLookup(false)

	canonicalPlan, err := dfr.CanonicalPlan(plan)
	if err != nil {
		s.observe(metrics.OutcomeFault, start)
		return nil, fmt.Errorf("canonicalize plan: %w", err)
	}
	stored, created, err := s.store.PutIfAbsent(ctx, &store.Record{
		PlanHash:      report.PlanHash,
		EngineVersion: report.EngineVersion,
		SchemaVersion: plan.SchemaVersion,
		CanonicalPlan: string(canonicalPlan),
		Violations:    report.Violations,
		Passed:        report.Passed,
		CreatedAt:     report.Timestamp,
	})
	if err != nil {
		s.observe(metrics.OutcomeFault, start)
		log.Error("persisting report failed", zap.Error(err))
		return nil, fmt.Errorf("persist report: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveViolations(report.Violations)
	}
	s.observe(outcomeOf(report.Passed), start)
	log.Info("validation complete",
		zap.Bool("passed", report.Passed),
		zap.Int("violations", len(report.Violations)),
		zap.Bool("stored", created),
		zap.Duration("duration", time.Since(start)))

	if !created {
		// Another request stored the same key first; its report wins.
		return &Result{Report: stored.DFR(), Cached: true}, nil
	}
	return &Result{Report: report, Cached: false}, nil
}

// Compile checks plan against the schema and returns its graph view.
func (s *Service) Compile(plan *models.Plan) (*models.Graph, error) {
	if err := parser.ValidatePlan(plan); err != nil {
		return nil, err
	}
	g, err := s.engine.Compile(plan)
	if err != nil {
		var cerr *compiler.Error
		if errors.As(err, &cerr) && s.metrics != nil {
			s.metrics.CompilationFailure(string(cerr.Code))
		}
		return nil, err
	}
	return compiler.Export(g), nil
}

func (s *Service) Stats(ctx context.Context) (*models.ValidationStats, error) {
	return s.store.Stats(ctx)
}

// Ready reports whether the store can serve requests.
func (s *Service) Ready() error {
	return s.store.Ping()
}

func (s *Service) recordEngineError(log *zap.Logger, err error, start time.Time) {
	var cerr *compiler.Error
	switch {
	case errors.As(err, &cerr):
		if s.metrics != nil {
			s.metrics.CompilationFailure(string(cerr.Code))
		}
		s.observe(metrics.OutcomeCompilationError, start)
		log.Info("plan compilation failed", zap.String("rule_code", string(cerr.Code)), zap.Error(err))
	case errors.Is(err, rules.ErrEvaluationFault):
		s.observe(metrics.OutcomeFault, start)
		log.Error("rule evaluation fault", zap.Error(err))
	default:
		s.observe(metrics.OutcomeFault, start)
		log.Error("engine failure", zap.Error(err))
	}
}

func (s *Service) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveValidation(outcome, time.Since(start))
	}
}

func (s *Service) cacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.CacheLookup(hit)
	}
}

func outcomeOf(passed bool) string {
	if passed {
		return metrics.OutcomePassed
	}
	return metrics.OutcomeFailed
}
