package synth

import (
	"math"
	"testing"
)

// expDecayModule implements dy/dt = lambda*y in a single state slot,
// for exercising the integrator against a closed-form solution.
type expDecayModule struct {
	lambda float32
	slot   int
}

func (m *expDecayModule) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	k.Write(m.slot, m.lambda*s.Get(m.slot), Derivative)
}
func (m *expDecayModule) ProcessEvent(ControllerEvent)                           {}
func (m *expDecayModule) Finalize(s *State, timeStep float32, scratch []float32) {}

// TestRK4MatchesExponentialDecay checks invariant 6: classical RK4
// integrating dy/dt = lambda*y for a fixed horizon matches the
// closed-form exponential to within 1e-3.
func TestRK4MatchesExponentialDecay(t *testing.T) {
	const lambda = float32(-2.0)
	const slot = ReservedSlots
	const dt = float32(1.0 / 44100)
	const steps = 4410 // 0.1 s

	m := &expDecayModule{lambda: lambda, slot: slot}
	e := NewEngine(slot+1, []Module{m}, RK4Tableau, 1, 1)
	e.State().Set(slot, 1.0)

	for i := 0; i < steps; i++ {
		e.Step(dt)
	}

	got := e.State().Get(slot)
	want := float32(math.Exp(float64(lambda * dt * float32(steps))))
	if d := got - want; d > 1e-3 || d < -1e-3 {
		t.Fatalf("RK4 decay after %d steps = %v, want ~%v", steps, got, want)
	}
}
