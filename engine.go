package geosymbol

import (
	"github.com/felixgeelhaar/bolt/v3"
	"github.com/felixgeelhaar/statekit"
)

// ============================================================
// Engine: forward chaining to saturation, then one solve
// ============================================================

// Phase is the Engine's position in a run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSaturating Phase = "saturating"
	PhaseSolving    Phase = "solving"
	PhaseDone       Phase = "done"
)

const (
	eventSolve  statekit.EventType = "SOLVE"
	eventFinish statekit.EventType = "FINISH"
)

// runContext is the statekit machine context for one run.
type runContext struct {
	logger *bolt.Logger
}

// Engine applies its rules until no rule yields a new equation, then hands
// the accumulated equations to its Solver once. Rules run in registration
// order, which fixes the order of the explanation trail.
//
// An Engine and its Solver serve a single figure: the Solver keeps what it
// resolved, so a second State run through the same Engine would substitute
// the first figure's values. Build a new Engine and Solver per State.
type Engine struct {
	rules   []Rule
	solver  *Solver
	logger  *bolt.Logger
	machine *statekit.MachineConfig[*runContext]
	phase   Phase
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger makes the Engine log phase changes and rule contributions at debug level.
func WithLogger(l *bolt.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(rules []Rule, solver *Solver, opts ...EngineOption) *Engine {
	if solver == nil {
		solver = NewSolver()
	}
	e := &Engine{
		rules:   append([]Rule(nil), rules...),
		solver:  solver,
		machine: mustPhaseMachine(),
		phase:   PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Phase() Phase { return e.phase }

// Run saturates state with rule output, solves the resulting equations and
// copies every resolved value into state.KnownValues. A panicking rule aborts
// the run.
func (e *Engine) Run(state *State) {
	if state.KnownValues == nil {
		state.KnownValues = map[string]float64{}
	}

	interp := statekit.NewInterpreter(e.machine)
	rc := &runContext{logger: e.logger}
	interp.UpdateContext(func(c **runContext) { *c = rc })
	interp.Start()
	defer interp.Stop()
	e.syncPhase(interp)

	e.saturate(state)

	interp.Send(statekit.Event{Type: eventSolve})
	e.syncPhase(interp)

	e.solve(state)

	interp.Send(statekit.Event{Type: eventFinish})
	e.syncPhase(interp)
}

func (e *Engine) syncPhase(interp *statekit.Interpreter[*runContext]) {
	e.phase = Phase(interp.State().Value)
}

// saturate runs passes over all rules until a pass adds nothing. Equations
// already in the state count as seen, so re-running on a populated state is a
// no-op.
func (e *Engine) saturate(state *State) {
	seen := make(map[string]struct{}, len(state.Equations))
	for _, eq := range state.Equations {
		seen[eq.Key()] = struct{}{}
	}
	noted := map[string]struct{}{}
	for _, st := range state.Steps {
		if st.Produces == nil {
			noted[st.Rule+"::"+st.Description] = struct{}{}
		}
	}

	for pass, applied := 1, true; applied; pass++ {
		applied = false
		for _, rule := range e.rules {
			step := rule.Apply(state)
			if step == nil {
				continue
			}
			if step.Produces == nil {
				// Informational steps are logged once; repeating one is not progress.
				key := step.Rule + "::" + step.Description
				if _, ok := noted[key]; ok {
					continue
				}
				noted[key] = struct{}{}
				state.Steps = append(state.Steps, *step)
				applied = true
				continue
			}

			var fresh []Equation
			for _, eq := range step.Produces {
				k := eq.Key()
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				fresh = append(fresh, eq)
			}
			if len(fresh) == 0 {
				continue
			}
			state.Equations = append(state.Equations, fresh...)
			out := *step
			out.Produces = fresh
			state.Steps = append(state.Steps, out)
			applied = true

			if e.logger != nil {
				e.logger.Debug().
					Str("rule", rule.Name()).
					Int("pass", pass).
					Int("equations", len(fresh)).
					Msg("rule produced equations")
			}
		}
	}
}

// solve seeds the solver with the caller's known values, solves once and
// appends an algebra step for every newly resolved variable.
func (e *Engine) solve(state *State) {
	e.solver.Seed(state.KnownValues)
	before := len(e.solver.derivations)
	e.solver.Solve(state.Equations)

	mentioned := map[string]struct{}{}
	for _, eq := range state.Equations {
		for _, name := range eq.Variables() {
			mentioned[name] = struct{}{}
		}
	}
	for name, v := range e.solver.values {
		if _, ok := mentioned[name]; !ok {
			continue
		}
		if _, ok := state.KnownValues[name]; !ok {
			state.KnownValues[name] = v
		}
	}
	for _, d := range e.solver.derivations[before:] {
		state.Steps = append(state.Steps, Step{
			Kind:        StepAlgebra,
			Rule:        d.Origin,
			Description: d.String(),
		})
	}

	if e.logger != nil {
		e.logger.Debug().
			Int("equations", len(state.Equations)).
			Int("resolved", len(e.solver.derivations)-before).
			Int("known", len(state.KnownValues)).
			Msg("solve finished")
	}
}

// ============================================================
// Phase machine
// ============================================================

func mustPhaseMachine() *statekit.MachineConfig[*runContext] {
	m, err := statekit.NewMachine[*runContext]("engine").
		WithInitial(statekit.StateID(PhaseSaturating)).
		WithContext(&runContext{}).
		WithAction("logPhase", logPhase).
		State(statekit.StateID(PhaseSaturating)).
		OnEntry("logPhase").
		On(eventSolve).Target(statekit.StateID(PhaseSolving)).
		Done().
		State(statekit.StateID(PhaseSolving)).
		OnEntry("logPhase").
		On(eventFinish).Target(statekit.StateID(PhaseDone)).
		Done().
		State(statekit.StateID(PhaseDone)).
		Final().
		OnEntry("logPhase").
		Done().
		Build()
	if err != nil {
		panic("geosymbol: invalid engine phase machine: " + err.Error())
	}
	return m
}

func logPhase(ctx **runContext, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).logger == nil {
		return
	}
	phase := PhaseSaturating
	switch event.Type {
	case eventSolve:
		phase = PhaseSolving
	case eventFinish:
		phase = PhaseDone
	}
	(*ctx).logger.Debug().Str("phase", string(phase)).Msg("engine phase")
}
