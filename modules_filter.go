// modules_filter.go - 1-pole, state-variable (SVF), 4-pole ladder, and
// all-pass filter modules (spec §4.4).
//
// Grounded on original_source/synth-engine/src/modules/{filter_6db,
// filter_12db,filter_24db,allpass}.rs for the exact state-slot/update-
// class split, and on the teacher's fastTanh helper (audio_lut.go) for
// the Moog-style saturating ladder variant.

package synth

// OnePoleFilter: dlp/dt = 2*pi*f*(in-lp); highpass output is the
// algebraic complement in-lp.
type OnePoleFilter struct {
	F0                   float32
	LP, HP               int
	In, PitchControl     *Program
}

func (f *OnePoleFilter) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	freq := pitchToFreq(f.F0, Eval(f.PitchControl, s, scratch), 0)
	in := Eval(f.In, s, scratch)
	lp := s.Get(f.LP)

	k.Write(f.LP, TwoPi32(freq)*(in-lp), Derivative)
	k.Write(f.HP, in-lp, Absolute)
}

func (f *OnePoleFilter) ProcessEvent(ControllerEvent) {}
func (f *OnePoleFilter) Finalize(s *State, timeStep float32, scratch []float32) {}

// TwoPi32 converts a frequency in Hz to an angular rate; a small helper
// so filter modules read close to the spec's "a = 2*pi*f" notation.
func TwoPi32(f float32) float32 { return float32(TwoPi) * f }

// SVFFilter is the 2-pole state-variable filter with three owned slots
// (hp, bp, lp); hp is an algebraic function of the other two.
type SVFFilter struct {
	HP, BP, LP                int
	In, PitchControl, ResCtrl *Program
}

func (f *SVFFilter) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	freq := Eval(f.PitchControl, s, scratch)
	a := TwoPi32(freq)
	q := Eval(f.ResCtrl, s, scratch)
	b := 1 / clamp32(q, 1e-4, 1)

	in := Eval(f.In, s, scratch)
	bp := s.Get(f.BP)
	lp := s.Get(f.LP)

	hp := in - lp - b*bp
	k.Write(f.HP, hp, Absolute)
	k.Write(f.BP, a*hp, Derivative)
	k.Write(f.LP, a*bp, Derivative)
}

func (f *SVFFilter) ProcessEvent(ControllerEvent) {}
func (f *SVFFilter) Finalize(s *State, timeStep float32, scratch []float32) {}

// LadderFilter is the 4-pole cascaded ladder. Moog enables the
// tanh-saturating variant; otherwise it is purely linear (spec §4.4).
type LadderFilter struct {
	F0                           float32
	S                            [4]int
	In, PitchControl, Resonance  *Program
	Moog                         bool
}

func (f *LadderFilter) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	freq := pitchToFreq(f.F0, Eval(f.PitchControl, s, scratch), 0)
	g := TwoPi32(freq)
	r := Eval(f.Resonance, s, scratch)
	if r < 0 {
		r = 0
	}

	in := Eval(f.In, s, scratch)
	var sVals [4]float32
	for i, idx := range f.S {
		sVals[i] = s.Get(idx)
	}

	x0 := in - r*sVals[3]
	xs := [4]float32{x0, sVals[0], sVals[1], sVals[2]}

	for i := 0; i < 4; i++ {
		x := xs[i]
		if f.Moog {
			x = fastTanh(x)
		}
		k.Write(f.S[i], g*(x-sVals[i]), Derivative)
	}
}

func (f *LadderFilter) ProcessEvent(ControllerEvent) {}
func (f *LadderFilter) Finalize(s *State, timeStep float32, scratch []float32) {}

// AllPassFilter holds one capacitor slot: dc/dt = 2*pi*f*(in-c);
// signal output is the algebraic 2c-in.
type AllPassFilter struct {
	C, Out               int
	In, PitchControl     *Program
	F0                   float32
}

func (f *AllPassFilter) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	freq := pitchToFreq(f.F0, Eval(f.PitchControl, s, scratch), 0)
	in := Eval(f.In, s, scratch)
	c := s.Get(f.C)

	k.Write(f.C, TwoPi32(freq)*(in-c), Derivative)
	k.Write(f.Out, 2*c-in, Absolute)
}

func (f *AllPassFilter) ProcessEvent(ControllerEvent) {}
func (f *AllPassFilter) Finalize(s *State, timeStep float32, scratch []float32) {}
