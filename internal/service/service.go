// Package service runs reasoning requests end to end: rule selection, the
// engine run, metrics, tracing and optional persistence.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/njchilds90/geosymbol"
	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/store"
	"github.com/njchilds90/geosymbol/internal/telemetry"
)

var (
	// ErrEmptyFacts is returned for a request without facts.
	ErrEmptyFacts = errors.New("at least one fact is required")
	// ErrInvalidRequest wraps request problems other than missing facts.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound is returned when no stored run has the requested ID.
	ErrNotFound = store.ErrNotFound
	// ErrNoStore is returned by run lookups on a Service without a store.
	ErrNoStore = errors.New("run storage is not configured")
	// ErrRulePanic is returned when a rule panics during a run.
	ErrRulePanic = errors.New("rule panicked")
)

// SolveRequest is one figure to reason about.
type SolveRequest struct {
	Facts []string           `json:"facts" yaml:"facts"`
	Known map[string]float64 `json:"known,omitempty" yaml:"known"`
	// Rules overrides the service's rule set for this request.
	Rules []string `json:"rules,omitempty" yaml:"rules"`
	// Save persists the run when the service has a store.
	Save bool `json:"save,omitempty" yaml:"save"`
}

// Result is a finished run.
type Result struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Facts     []string  `json:"facts"`
	Rules     []string  `json:"rules"`
	geosymbol.SolveResult
	Report string `json:"report"`

	State *geosymbol.State `json:"-"`
}

// Summary is the list view of a stored run.
type Summary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Facts      []string  `json:"facts"`
	Known      int       `json:"known"`
	Unresolved int       `json:"unresolved"`
}

// Service is safe for concurrent use; every Solve builds its own State,
// Engine and Solver.
type Service struct {
	store  *store.Store
	rules  []geosymbol.Rule
	logger *bolt.Logger
	tracer trace.Tracer
}

type Option func(*Service)

// WithStore enables persistence and run lookups.
func WithStore(s *store.Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithRules sets the rules used when a request names none.
func WithRules(rules []geosymbol.Rule) Option {
	return func(svc *Service) { svc.rules = rules }
}

func WithLogger(l *bolt.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(svc *Service) { svc.tracer = telemetry.Tracer(tp) }
}

func New(opts ...Option) *Service {
	svc := &Service{
		rules:  geosymbol.DefaultRules(),
		tracer: telemetry.Tracer(nil),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = logging.Get()
	}
	return svc
}

// HasStore reports whether runs can be saved and looked up.
func (s *Service) HasStore() bool { return s.store != nil }

// RuleNames lists the service's default rule set.
func (s *Service) RuleNames() []string { return geosymbol.RuleNames(s.rules) }

// Solve runs the engine over req and, when asked, stores the result.
func (s *Service) Solve(ctx context.Context, req SolveRequest) (res *Result, err error) {
	ctx, span := s.tracer.Start(ctx, "geosymbol.Solve",
		trace.WithAttributes(
			attribute.Int("facts", len(req.Facts)),
			attribute.Int("known", len(req.Known)),
		))
	defer span.End()
	defer func() {
		if err != nil {
			telemetry.ObserveFailure()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if len(req.Facts) == 0 {
		return nil, ErrEmptyFacts
	}
	rules := s.rules
	if len(req.Rules) > 0 {
		if rules, err = geosymbol.RulesByName(req.Rules); err != nil {
			return nil, errors.Wrap(ErrInvalidRequest, err.Error())
		}
	}
	for name, v := range req.Known {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrInvalidRequest, "known %s is not finite", name)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := geosymbol.NewState(req.Facts...)
	for name, v := range req.Known {
		state.KnownValues[name] = v
	}

	start := time.Now()
	if err := s.run(rules, state); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	res = &Result{
		CreatedAt:   time.Now().UTC(),
		Facts:       state.Facts.All(),
		Rules:       geosymbol.RuleNames(rules),
		SolveResult: geosymbol.ResultOf(state),
		Report:      geosymbol.Report(state),
		State:       state,
	}

	stepRules := make([]string, len(state.Steps))
	for i, st := range state.Steps {
		stepRules[i] = st.Rule
	}
	derived := 0
	for name := range state.KnownValues {
		if _, seeded := req.Known[name]; !seeded {
			derived++
		}
	}
	stats := telemetry.RunStats{
		Equations:  len(state.Equations),
		Resolved:   derived,
		Unresolved: len(res.Unresolved),
		Duration:   elapsed,
		Rules:      stepRules,
	}
	telemetry.ObserveRun(stats)
	span.SetAttributes(
		attribute.Int("equations", stats.Equations),
		attribute.Int("resolved", stats.Resolved),
		attribute.Int("unresolved", stats.Unresolved),
		attribute.String("outcome", stats.Outcome()),
	)

	if req.Save && s.store != nil {
		rec := &store.Record{
			CreatedAt: res.CreatedAt,
			Rules:     res.Rules,
			Seed:      req.Known,
			State:     state,
		}
		if err := s.store.Save(ctx, rec); err != nil {
			return nil, err
		}
		res.ID = rec.ID
		span.SetAttributes(attribute.String("run_id", rec.ID))
	}

	logging.NewEvent(s.logger.Info()).
		Add(logging.RunID(res.ID)).
		Add(logging.Count("facts", len(res.Facts))).
		Add(logging.Count("equations", stats.Equations)).
		Add(logging.Count("resolved", stats.Resolved)).
		Add(logging.Count("unresolved", stats.Unresolved)).
		Add(logging.Str("outcome", stats.Outcome())).
		Add(logging.Duration(elapsed)).
		Msg("run finished")
	return res, nil
}

// run executes one engine pass, turning a rule panic into ErrRulePanic.
func (s *Service) run(rules []geosymbol.Rule, state *geosymbol.State) (err error) {
	engine := geosymbol.NewEngine(rules, geosymbol.NewSolver(), geosymbol.WithLogger(s.logger))
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(ErrRulePanic, fmt.Sprint(r))
			logging.NewEvent(s.logger.Error()).
				Add(logging.Phase(string(engine.Phase()))).
				Add(logging.ErrorField(err)).
				Msg("run aborted")
		}
	}()
	engine.Run(state)
	return nil
}

// Get loads a stored run.
func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return resultOf(rec), nil
}

// List returns up to limit stored runs, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Summary, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	recs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		sum := Summary{ID: rec.ID, CreatedAt: rec.CreatedAt}
		if rec.State != nil {
			sum.Facts = rec.State.Facts.All()
			sum.Known = len(rec.State.KnownValues)
			sum.Unresolved = len(rec.State.Unresolved())
		}
		out = append(out, sum)
	}
	return out, nil
}

// Delete removes a stored run.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrNoStore
	}
	return s.store.Delete(ctx, id)
}

func resultOf(rec *store.Record) *Result {
	state := rec.State
	if state == nil {
		state = geosymbol.NewState()
	}
	return &Result{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt,
		Facts:       state.Facts.All(),
		Rules:       rec.Rules,
		SolveResult: geosymbol.ResultOf(state),
		Report:      geosymbol.Report(state),
		State:       state,
	}
}
