// modules_envelope.go - the unified AD/AR/Cyclic envelope state machine
// (spec §4.4).
//
// Grounded on original_source/synth-engine/src/modules/envelope.rs: the
// blackman/triangle shape blend, the cycle-state differentiable rise
// and decay, and the Attack/Hold/Decay/Finished transition table are
// all ported verbatim from that file's EnvState/EnvType match arms.

package synth

import "math"

func blackmanWindow(x float32) float32 {
	x = clamp32(x, 0, 1)
	return 0.42 - 0.5*float32(math.Cos(2*math.Pi*float64(x))) + 0.08*float32(math.Cos(4*math.Pi*float64(x)))
}

func triangleWindow(x float32) float32 {
	x = clamp32(x, 0, 1)
	return 1 - absf32(2*x-1)
}

const envMinTime = float32(0.01) // 10 ms

// riseDecay converts a rise/decay time in seconds to a cycle-state rate,
// floored at envMinTime to keep the integrator stable near t=0.
func riseDecay(t float32) float32 {
	if t < envMinTime {
		t = envMinTime
	}
	return 1 / t
}

// envelopeOutput blends the blackman and triangle windows at the
// half-cycle position implied by cycleIndex, per shape in [0,1].
func envelopeOutput(cycleIndex, shape float32) float32 {
	half := clamp32(cycleIndex*0.5, 0, 0.5)
	shape = clamp32(shape, 0, 1)
	return blackmanWindow(half)*shape + triangleWindow(half)*(1-shape)
}

// EnvelopeKind selects which of the three transition graphs an Envelope
// runs (spec §4.4): Cyclic retriggers on its own cycle completion;
// AttackDecay and AttackRelease start (and restart during decay) when
// the signal input reaches 0.5, and AttackRelease also holds at its
// peak until the signal input drops below 0.5.
type EnvelopeKind uint8

const (
	AttackDecay EnvelopeKind = iota
	AttackRelease
	Cyclic
)

type envState uint8

const (
	envFinished envState = iota
	envAttack
	envHold
	envDecay
)

// Envelope is the unified AD/AR/Cyclic envelope generator. It owns one
// cycle-state slot (a differentiable 0..1 ramp) and writes its shaped
// output to OutIndex.
type Envelope struct {
	Kind                                        EnvelopeKind
	SignalIn, AttackIn, DecayIn, ShapeSelect     *Program
	OutIndex, CycleIndex                        int

	state envState // module-private, advances only in Finalize
}

func (e *Envelope) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	switch e.state {
	case envAttack:
		attack := Eval(e.AttackIn, s, scratch)
		k.Write(e.CycleIndex, riseDecay(attack), Derivative)
		k.Write(e.OutIndex, envelopeOutput(s.Get(e.CycleIndex), Eval(e.ShapeSelect, s, scratch)), Absolute)
	case envDecay:
		decay := Eval(e.DecayIn, s, scratch)
		k.Write(e.CycleIndex, -riseDecay(decay), Derivative)
		k.Write(e.OutIndex, envelopeOutput(s.Get(e.CycleIndex), Eval(e.ShapeSelect, s, scratch)), Absolute)
	}
}

func (e *Envelope) ProcessEvent(ControllerEvent) {}

func (e *Envelope) Finalize(s *State, timeStep float32, scratch []float32) {
	signal := Eval(e.SignalIn, s, scratch)
	cycle := s.Get(e.CycleIndex)

	switch e.state {
	case envAttack:
		if cycle >= 1 {
			if e.Kind == AttackRelease {
				e.state = envHold
			} else {
				e.state = envDecay
			}
		}
	case envHold:
		switch e.Kind {
		case AttackRelease:
			if signal < 0.5 {
				e.state = envDecay
			}
		case AttackDecay, Cyclic:
			e.state = envDecay
		}
	case envDecay:
		switch e.Kind {
		case Cyclic:
			if cycle <= 0 {
				e.state = envAttack
			}
		case AttackRelease, AttackDecay:
			if signal >= 0.5 {
				e.state = envAttack
			} else if cycle <= 0 {
				e.state = envFinished
			}
		}
	case envFinished:
		switch e.Kind {
		case Cyclic:
			e.state = envAttack
		case AttackRelease, AttackDecay:
			if signal > 0.5 {
				e.state = envAttack
			}
		}
	}

	s.Set(e.OutIndex, clamp32(s.Get(e.OutIndex), 0, 1))
	s.Set(e.CycleIndex, clamp32(cycle, 0, 1))
}
