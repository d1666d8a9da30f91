package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orchidlab/internal/validation"
	"orchidlab/pkg/domain"
)

// Service exposes the validated, transactional operations of the lab: record
// creation, confirmation actions, derived dates, alerts and statistics.
type Service struct {
	store          PersistentStore
	engine         *RulesEngine
	now            func() time.Time
	clock          Clock
	logger         Logger
	audit          AuditRecorder
	metrics        MetricsRecorder
	tracer         Tracer
	validator      *validation.Validator
	maturationDays int
}

type serviceOptions struct {
	clock          Clock
	clockSet       bool
	logger         Logger
	audit          AuditRecorder
	metrics        MetricsRecorder
	tracer         Tracer
	hybridPolicy   validation.HybridSameSpeciesPolicy
	maturationDays int
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:          ClockFunc(nil),
		logger:         noopLogger{},
		audit:          noopAuditRecorder{},
		metrics:        noopMetricsRecorder{},
		tracer:         noopTracer{},
		hybridPolicy:   validation.HybridSameSpeciesBlock,
		maturationDays: domain.DefaultMaturationDays,
	}
}

// WithClock pins the service clock. The clock also stamps store records when
// the store accepts a time provider.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
			o.clockSet = true
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder sets the recorder receiving mutating operation outcomes.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the span tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithHybridSameSpeciesPolicy selects how same-species Hybrid crosses are treated.
func WithHybridSameSpeciesPolicy(policy validation.HybridSameSpeciesPolicy) ServiceOption {
	return func(o *serviceOptions) {
		if policy != "" {
			o.hybridPolicy = policy
		}
	}
}

// WithDefaultMaturationDays overrides the maturation offset applied to
// pollination types that do not carry one.
func WithDefaultMaturationDays(days int) ServiceOption {
	return func(o *serviceOptions) {
		if days > 0 {
			o.maturationDays = days
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	var explicit Clock
	if options.clockSet {
		explicit = options.clock
	}
	nowFn := selectNowFunc(store, explicit)
	if options.clockSet {
		if setter, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok {
			setter.SetNowFunc(nowFn)
		}
	}

	return &Service{
		store:   store,
		engine:  extractRulesEngine(store),
		now:     nowFn,
		clock:   ClockFunc(nowFn),
		logger:  options.logger,
		audit:   options.audit,
		metrics: options.metrics,
		tracer:  options.tracer,
		validator: validation.New(
			validation.WithClock(validation.ClockFunc(nowFn)),
			validation.WithHybridSameSpeciesPolicy(options.hybridPolicy),
		),
		maturationDays: options.maturationDays,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine gets the default rule set.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// RulesEngine returns the engine evaluated by the store, if it exposes one.
func (s *Service) RulesEngine() *RulesEngine {
	return s.engine
}

// Validator returns the validator configured for this service.
func (s *Service) Validator() *validation.Validator {
	return s.validator
}

// Today returns the service's current calendar date.
func (s *Service) Today() time.Time {
	return domain.DateOf(s.now())
}

func extractRulesEngine(store PersistentStore) *RulesEngine {
	if provider, ok := store.(interface{ RulesEngine() *RulesEngine }); ok {
		return provider.RulesEngine()
	}
	return nil
}

// selectNowFunc prefers an explicit clock, then the store's time provider,
// then the system clock. Every result is in UTC.
func selectNowFunc(store PersistentStore, clock Clock) func() time.Time {
	if clock != nil {
		return func() time.Time { return clock.Now().UTC() }
	}
	if provider, ok := store.(interface{ NowFunc() func() time.Time }); ok {
		if fn := provider.NowFunc(); fn != nil {
			return func() time.Time { return fn().UTC() }
		}
	}
	return func() time.Time { return time.Now().UTC() }
}

// run wraps an operation with tracing, metrics, audit and logging.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) (string, error)) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	entityID, err := fn(ctx)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	s.recordAudit(ctx, op, entityID, duration, err)
	if err != nil {
		var blocked RuleViolationError
		if errors.As(err, &blocked) {
			s.logger.Warn("operation blocked", "operation", op, "violations", blocked.Result.Codes())
		} else if failures, ok := domain.AsValidationErrors(err); ok {
			s.logger.Warn("operation rejected", "operation", op, "entity_id", entityID, "codes", failures.Codes())
		} else {
			s.logger.Error("operation failed", "operation", op, "entity_id", entityID, "error", err)
		}
		return err
	}
	s.logger.Debug("operation completed", "operation", op, "entity_id", entityID, "duration", duration)
	return nil
}

// mutate validates against the transaction snapshot and, when nothing
// blocks, applies write in the same transaction.
func (s *Service) mutate(ctx context.Context, op string, validate func(TransactionView) Result, write func(Transaction) (string, error)) (Result, error) {
	var res Result
	err := s.run(ctx, op, func(ctx context.Context) (string, error) {
		var entityID string
		stored, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if validate != nil {
				checked := validate(tx.Snapshot())
				res.Merge(checked)
				if checked.HasBlocking() {
					return RuleViolationError{Result: checked}
				}
			}
			id, err := write(tx)
			entityID = id
			return err
		})
		res.Merge(stored)
		if failures, ok := domain.AsValidationErrors(err); ok {
			for _, failure := range failures {
				res.Violations = append(res.Violations, failure.Violation(auditedOperations[op].entity, entityID))
			}
		}
		return entityID, err
	})
	s.logAdvisories(op, res)
	return res, err
}

func (s *Service) logAdvisories(op string, res Result) {
	for _, v := range res.Violations {
		switch v.Severity {
		case SeverityLog:
			s.logger.Info("advisory", "operation", op, "rule", v.Rule, "message", v.Message)
		case SeverityWarn:
			s.logger.Warn("warning", "operation", op, "rule", v.Rule, "message", v.Message)
		}
	}
}

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
