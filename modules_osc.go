// modules_osc.go - oscillator modules: quadrature, bowed, band-limited
// sawtooth, mipmapped wavetable, and VOSIM grain wavetable (spec §4.4).
//
// Grounded on original_source/synth-engine/src/modules/{quad,bowed,
// saw_osc}.rs for the exact integration/friction/filter formulas.

package synth

import "math"

// pitchToFreq implements the volts/octave + linear control convention
// of spec §4.4: f = f0 * 2^e + l.
func pitchToFreq(f0, e, l float32) float32 {
	return f0*float32(math.Pow(2, float64(e))) + l
}

// QuadratureOscillator integrates a unit-circle phasor: du/dt = -omega*v,
// dv/dt = omega*u, renormalized each frame to remove integration drift.
type QuadratureOscillator struct {
	F0                       float32
	U, V                     int
	ExpControl, LinControl   *Program
}

func (o *QuadratureOscillator) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	e := Eval(o.ExpControl, s, scratch)
	l := Eval(o.LinControl, s, scratch)
	omega := TwoPi * pitchToFreq(o.F0, e, l)

	u, v := s.Get(o.U), s.Get(o.V)
	k.Write(o.U, -omega*v, Derivative)
	k.Write(o.V, omega*u, Derivative)
}

func (o *QuadratureOscillator) ProcessEvent(ControllerEvent) {}

func (o *QuadratureOscillator) Finalize(s *State, timeStep float32, scratch []float32) {
	u, v := s.Get(o.U), s.Get(o.V)
	mag := float32(math.Sqrt(float64(u*u + v*v)))
	if mag < Epsilon {
		s.Set(o.U, 1)
		s.Set(o.V, 0)
		return
	}
	s.Set(o.U, u/mag)
	s.Set(o.V, v/mag)
}

// BowedOscillator is a quadrature phasor plus a nonlinear friction term
// driven by velocity/pressure inputs, modeling a bowed string's slip-
// stick behavior.
type BowedOscillator struct {
	F0, A, B                                       float32
	U, V                                           int
	ExpControl, LinControl, PressureIn, VelocityIn *Program
}

func bowFriction(a, b, x float32) float32 {
	return a * x * float32(math.Exp(float64(-b*x*x+0.5)))
}

func (o *BowedOscillator) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	e := Eval(o.ExpControl, s, scratch)
	l := Eval(o.LinControl, s, scratch)
	omega := TwoPi * pitchToFreq(o.F0, e, l)

	u, v := s.Get(o.U), s.Get(o.V)
	vb := clamp32(Eval(o.VelocityIn, s, scratch), -1, 1)
	force := Eval(o.PressureIn, s, scratch)
	if maxForce := omega / 2; force > maxForce {
		force = maxForce
	}
	f := force * bowFriction(o.A, o.B, v-vb)

	k.Write(o.U, -omega*v, Derivative)
	k.Write(o.V, omega*u-f, Derivative)
}

func (o *BowedOscillator) ProcessEvent(ControllerEvent) {}

func (o *BowedOscillator) Finalize(s *State, timeStep float32, scratch []float32) {
	u, v := s.Get(o.U), s.Get(o.V)
	mag := float32(math.Sqrt(float64(u*u + v*v)))
	if mag < Epsilon {
		s.Set(o.U, 1)
		s.Set(o.V, 0)
		return
	}
	s.Set(o.U, u/mag)
	s.Set(o.V, v/mag)
}

// sawFilterFreq is the fixed 2-pole alias-suppression filter frequency
// applied to the naive band-unlimited saw (spec §4.4).
const sawFilterFreq = TwoPi * 15000

// SawOscillator integrates the mean of the naive saw over each RK
// stage's sub-interval, then feeds a 2-pole filter to suppress alias
// energy. Phase is tracked as module-private state, not in S.
type SawOscillator struct {
	F0                     float32
	FilterState, SignalOut int
	PitchControl, LinMod   *Program

	position float32 // module-private phase in [0,1), advanced in Finalize
}

func sawEval(x float32) float32 {
	x = float32(math.Mod(float64(x), 1))
	if x < 0 {
		x++
	}
	return 1 - 2*x
}

func sawIntegral(start, end float32) float32 {
	wrap := func(x float32) float32 {
		x = float32(math.Mod(float64(x), 1))
		if x < 0 {
			x++
		}
		return x
	}
	s, e := wrap(start), wrap(end)
	return (e - e*e) - (s - s*s)
}

func (o *SawOscillator) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	freq := pitchToFreq(o.F0, Eval(o.PitchControl, s, scratch), Eval(o.LinMod, s, scratch))

	distance := k.TimeStep() * freq
	start := o.position + k.DeltaTime()*freq
	end := start + distance

	var i float32
	if absf32(distance) < Epsilon {
		i = sawEval(start)
	} else {
		i = sawIntegral(start, end) / distance
	}

	a, b := float32(sawFilterFreq), float32(2)
	filterState := s.Get(o.FilterState)
	signalOut := s.Get(o.SignalOut)

	k.Write(o.FilterState, a*(i-b*filterState-signalOut), Derivative)
	k.Write(o.SignalOut, a*filterState, Derivative)
}

func (o *SawOscillator) ProcessEvent(ControllerEvent) {}

func (o *SawOscillator) Finalize(s *State, timeStep float32, scratch []float32) {
	freq := pitchToFreq(o.F0, Eval(o.PitchControl, s, scratch), Eval(o.LinMod, s, scratch))
	p := o.position + freq*timeStep
	p = float32(math.Mod(float64(p), 1))
	if p < 0 {
		p++
	}
	o.position = p
}

// WavetableOscillator evaluates a mipmapped, cubically-interpolated
// wavetable, selecting the highest-resolution level that advances at
// most one table sample per step (the smallest level if none does) to
// avoid audible aliasing.
// Multiple loaded tables crossfade by a scan-control input. The output
// is first-order lowpass filtered toward the looked-up sample.
type WavetableOscillator struct {
	F0                                  float32
	Out                                 int
	PitchControl, LinMod, ScanControl   *Program
	Tables                              [][][]float32 // [tableIndex][mipLevel][sample]

	cyclePos float32 // module-private phase accumulator in cycles
}

// NewWavetableOscillator builds the mipmap cascade for each loaded
// source table (windowed-sinc half-rate cascade, spec §4.8).
func NewWavetableOscillator(f0 float32, out int, pitch, linMod, scan *Program, sources [][]float32, sincTaps int) *WavetableOscillator {
	tables := make([][][]float32, len(sources))
	for i, src := range sources {
		tables[i] = buildMipmap(src, sincTaps)
	}
	return &WavetableOscillator{F0: f0, Out: out, PitchControl: pitch, LinMod: linMod, ScanControl: scan, Tables: tables}
}

func wavetableLookup(levels [][]float32, cyclesPerStep float32, pos float32) float32 {
	level := len(levels) - 1
	for i, lvl := range levels {
		samplesPerStep := cyclesPerStep * float32(len(lvl))
		if samplesPerStep <= 1 {
			level = i
			break
		}
	}
	table := levels[level]
	n := len(table)
	x := pos * float32(n)
	i0 := int(math.Floor(float64(x)))
	frac := x - float32(i0)
	p0 := table[wrapIndex(i0-1, n)]
	p1 := table[wrapIndex(i0, n)]
	p2 := table[wrapIndex(i0+1, n)]
	p3 := table[wrapIndex(i0+2, n)]
	return cubicCatmullRom(p0, p1, p2, p3, frac)
}

func (o *WavetableOscillator) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	freq := pitchToFreq(o.F0, Eval(o.PitchControl, s, scratch), Eval(o.LinMod, s, scratch))
	cyclesPerStep := k.TimeStep() * freq
	pos := o.cyclePos + k.DeltaTime()*freq
	pos = pos - float32(math.Floor(float64(pos)))

	var sample float32
	if len(o.Tables) == 1 {
		sample = wavetableLookup(o.Tables[0], cyclesPerStep, pos)
	} else {
		scan := clamp32(Eval(o.ScanControl, s, scratch), 0, float32(len(o.Tables)-1))
		lo := int(scan)
		hi := lo + 1
		if hi >= len(o.Tables) {
			hi = len(o.Tables) - 1
		}
		frac := scan - float32(lo)
		a := wavetableLookup(o.Tables[lo], cyclesPerStep, pos)
		b := wavetableLookup(o.Tables[hi], cyclesPerStep, pos)
		sample = lerpSample(a, b, frac)
	}

	const pole = TwoPi * 18000
	out := s.Get(o.Out)
	k.Write(o.Out, float32(pole)*(sample-out), Derivative)
}

func (o *WavetableOscillator) ProcessEvent(ControllerEvent) {}

func (o *WavetableOscillator) Finalize(s *State, timeStep float32, scratch []float32) {
	freq := pitchToFreq(o.F0, Eval(o.PitchControl, s, scratch), Eval(o.LinMod, s, scratch))
	pos := o.cyclePos + freq*timeStep
	o.cyclePos = pos - float32(math.Floor(float64(pos)))
}

// VosimOscillator gates a wavetable lookup by a grain phase: a second,
// usually higher, pitch defines the grain rate. Within each grain
// period only the fraction |velocity|/|grainVelocity| is filled from
// the table; the remainder outputs zero.
type VosimOscillator struct {
	F0                                                  float32
	Out                                                 int
	PitchControl, LinMod, GrainPitch, GrainLinMod, Scan *Program
	Tables                                              [][][]float32

	cyclePos, grainPos float32
}

func NewVosimOscillator(f0 float32, out int, pitch, linMod, grainPitch, grainLinMod, scan *Program, sources [][]float32, sincTaps int) *VosimOscillator {
	tables := make([][][]float32, len(sources))
	for i, src := range sources {
		tables[i] = buildMipmap(src, sincTaps)
	}
	return &VosimOscillator{F0: f0, Out: out, PitchControl: pitch, LinMod: linMod, GrainPitch: grainPitch, GrainLinMod: grainLinMod, Scan: scan, Tables: tables}
}

func (o *VosimOscillator) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	velocity := pitchToFreq(o.F0, Eval(o.PitchControl, s, scratch), Eval(o.LinMod, s, scratch))
	grainVelocity := pitchToFreq(o.F0, Eval(o.GrainPitch, s, scratch), Eval(o.GrainLinMod, s, scratch))

	cyclesPerStep := k.TimeStep() * velocity
	pos := o.cyclePos + k.DeltaTime()*velocity
	pos = pos - float32(math.Floor(float64(pos)))

	grainPos := o.grainPos + k.DeltaTime()*grainVelocity
	grainPos = grainPos - float32(math.Floor(float64(grainPos)))

	fillFraction := float32(1)
	if grainVelocity != 0 {
		fillFraction = clamp32(absf32(velocity)/absf32(grainVelocity), 0, 1)
	}

	var sample float32
	if grainPos < fillFraction {
		if len(o.Tables) == 1 {
			sample = wavetableLookup(o.Tables[0], cyclesPerStep, pos)
		} else {
			scan := clamp32(Eval(o.Scan, s, scratch), 0, float32(len(o.Tables)-1))
			lo := int(scan)
			hi := lo + 1
			if hi >= len(o.Tables) {
				hi = len(o.Tables) - 1
			}
			frac := scan - float32(lo)
			a := wavetableLookup(o.Tables[lo], cyclesPerStep, pos)
			b := wavetableLookup(o.Tables[hi], cyclesPerStep, pos)
			sample = lerpSample(a, b, frac)
		}
	}

	out := s.Get(o.Out)
	const pole = TwoPi * 18000
	k.Write(o.Out, float32(pole)*(sample-out), Derivative)
}

func (o *VosimOscillator) ProcessEvent(ControllerEvent) {}

func (o *VosimOscillator) Finalize(s *State, timeStep float32, scratch []float32) {
	velocity := pitchToFreq(o.F0, Eval(o.PitchControl, s, scratch), Eval(o.LinMod, s, scratch))
	grainVelocity := pitchToFreq(o.F0, Eval(o.GrainPitch, s, scratch), Eval(o.GrainLinMod, s, scratch))

	pos := o.cyclePos + velocity*timeStep
	o.cyclePos = pos - float32(math.Floor(float64(pos)))

	gpos := o.grainPos + grainVelocity*timeStep
	o.grainPos = gpos - float32(math.Floor(float64(gpos)))
}
