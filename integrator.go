// integrator.go - the generalized explicit Runge-Kutta driver that owns
// the module set and advances the state vector one audio frame at a
// time (spec §4.5).
//
// Grounded on the teacher's top-level engine-loop shape (audio_chip.go's
// per-sample process loop: gather inputs, advance oscillator/envelope
// state, mix, latch output) generalized from a fixed 4-channel mixer to
// an arbitrary module graph driven by a Butcher tableau.

package synth

// Tableau is the (a, b, c) coefficient triple defining an explicit
// Runge-Kutta method (spec §4.5, Glossary).
type Tableau struct {
	Stages int
	A      [][]float32 // lower-triangular, A[i][j] valid for j < i
	B      []float32
	C      []float32
}

// EulerTableau is the one-stage explicit Euler method.
var EulerTableau = Tableau{
	Stages: 1,
	A:      [][]float32{{}},
	B:      []float32{1},
	C:      []float32{0},
}

// RK4Tableau is the classical 4th-order Runge-Kutta method.
var RK4Tableau = Tableau{
	Stages: 4,
	A: [][]float32{
		{},
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	},
	B: []float32{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	C: []float32{0, 0.5, 0.5, 1},
}

// RK4ThreeEighthsTableau is the 3/8-rule variant of classical RK4.
var RK4ThreeEighthsTableau = Tableau{
	Stages: 4,
	A: [][]float32{
		{},
		{1.0 / 3},
		{-1.0 / 3, 1},
		{1, -1, 1},
	},
	B: []float32{1.0 / 8, 3.0 / 8, 3.0 / 8, 1.0 / 8},
	C: []float32{0, 1.0 / 3, 2.0 / 3, 1},
}

// Engine owns the state vector, the module set, and the event queue,
// and drives one RK step per audio frame.
type Engine struct {
	tableau Tableau
	modules []Module
	state   *State
	temp    *State
	stages  []*UpdateBuffer
	scratch []float32
	queue   *EventQueue
	onesC   []float32 // effective c=1.0 for every stage, used by the final combine
}

// NewEngine builds an engine with n state slots (including the two
// reserved output-latch slots), the given module set, Butcher tableau,
// stack-VM scratch depth, and controller-event queue capacity. Module
// construction and state-slot allocation are the external builder's
// responsibility (spec §3); the engine only drives the already-wired
// modules.
func NewEngine(n int, modules []Module, tableau Tableau, stackDepth, eventQueueCapacity int) *Engine {
	stages := make([]*UpdateBuffer, tableau.Stages)
	for i := range stages {
		stages[i] = NewUpdateBuffer(n)
	}
	onesC := make([]float32, tableau.Stages)
	for i := range onesC {
		onesC[i] = 1.0
	}
	return &Engine{
		tableau: tableau,
		modules: modules,
		state:   NewState(n),
		temp:    NewState(n),
		stages:  stages,
		scratch: make([]float32, stackDepth),
		queue:   NewEventQueue(eventQueueCapacity),
		onesC:   onesC,
	}
}

// State returns the engine's live state vector (read-only use outside
// the engine is the caller's responsibility).
func (e *Engine) State() *State { return e.state }

// Events returns the engine's controller-event queue, for an external
// producer to Push into.
func (e *Engine) Events() *EventQueue { return e.queue }

// Step advances the simulation by one audio frame of size dt: it drains
// pending controller events, runs every RK stage, combines the results
// into the state vector, and runs every module's Finalize. It returns
// the resulting stereo output sample.
func (e *Engine) Step(dt float32) (left, right float32) {
	e.queue.Drain(func(ev ControllerEvent) {
		for _, m := range e.modules {
			m.ProcessEvent(ev)
		}
	})

	for i := 0; i < e.tableau.Stages; i++ {
		row := e.tableau.A[i]
		deltaTime := e.tableau.C[i] * dt
		Apply(e.temp, e.state, e.stages[:i], row, e.tableau.C[:i], dt)

		e.stages[i].Reset(deltaTime, dt)
		for _, m := range e.modules {
			m.Simulate(e.temp, e.stages[i], e.scratch)
		}
	}

	// The final combine uses the effective node factor c=1.0 for every
	// stage (spec §4.6: "with dt as the step and 1.0 as the effective
	// c"), not the tableau's per-stage c values.
	Apply(e.state, e.state, e.stages, e.tableau.B, e.onesC, dt)

	for _, m := range e.modules {
		m.Finalize(e.state, dt, e.scratch)
	}

	return e.state.OutputGet(OutputLeft), e.state.OutputGet(OutputRight)
}
