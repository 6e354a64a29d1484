// modules_misc.go - amplifier, wavefolder, delay line, continuous
// control smoother, mono keyboard tracker, noise generator, zero
// source, and mono-output sink (spec §4.4).
//
// Grounded on original_source/synth-engine/src/modules/{amplifier,
// folder,delay_line,control,noise}.rs for the exact gain/fold/delay/
// smoothing formulas, and on original_source/synth-designer/src/modules
// /mono_keys_module.rs for the four-slot (pitch, gate, aftertouch,
// velocity) tracker layout. Folder uses the teacher's
// fastSin lookup (audio_lut.go) for its hot-path sin() call.

package synth

import "math"

// Amplifier composes linear and exponential gain controls, clamped to
// never produce a negative gain (spec §4.4).
type Amplifier struct {
	In, LinControl, ExpControl *Program
	OutIndex                  int
}

const ampMinGain = float32(1.0 / 32) // 2^-5

func amplifierGain(lin, exp float32) float32 {
	scale := 1 / (1 - ampMinGain)
	e := clamp32(exp, 0, 1)
	g := (float32(math.Pow(2, float64(5*(e-1)))) - ampMinGain) * scale
	g += lin
	if g < 0 {
		g = 0
	}
	return g
}

func (a *Amplifier) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	in := Eval(a.In, s, scratch)
	lin := Eval(a.LinControl, s, scratch)
	exp := Eval(a.ExpControl, s, scratch)
	k.Write(a.OutIndex, in*amplifierGain(lin, exp), Absolute)
}

func (a *Amplifier) ProcessEvent(ControllerEvent)                           {}
func (a *Amplifier) Finalize(s *State, timeStep float32, scratch []float32) {}

// Folder is a harmonic wavefolder: sin(in * (clamp(control,0,5)+1)).
type Folder struct {
	In, Control *Program
	OutIndex    int
}

func (f *Folder) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	in := Eval(f.In, s, scratch)
	c := clamp32(Eval(f.Control, s, scratch), 0, 5) + 1
	k.Write(f.OutIndex, fastSin(in*c), Absolute)
}

func (f *Folder) ProcessEvent(ControllerEvent)                           {}
func (f *Folder) Finalize(s *State, timeStep float32, scratch []float32) {}

// DelayLine owns an externally-supplied mutable sample buffer and write
// cursor. The read tap is derived from a pitch control and interpolated
// with the shared 4-tap Lagrange kernel.
type DelayLine struct {
	F0                             float32
	Buffer                         []float32
	writeIndex                     int
	SignalIn, PitchControl, LinMod *Program
	OutIndex                       int
}

func (d *DelayLine) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	l := float32(len(d.Buffer))
	dt := k.TimeStep()
	delta := k.DeltaTime()

	freq := pitchToFreq(d.F0, Eval(d.PitchControl, s, scratch), Eval(d.LinMod, s, scratch))

	tapDelay := clamp32(1/(dt*freq)-delta/dt, 5, l-5)
	readPos := float32(d.writeIndex) - tapDelay
	readPos = readPos - l*float32(math.Floor(float64(readPos/l)))

	i0 := int(math.Floor(float64(readPos)))
	frac := readPos - float32(i0)
	n := len(d.Buffer)
	p0 := d.Buffer[wrapIndex(i0-1, n)]
	p1 := d.Buffer[wrapIndex(i0, n)]
	p2 := d.Buffer[wrapIndex(i0+1, n)]
	p3 := d.Buffer[wrapIndex(i0+2, n)]

	k.Write(d.OutIndex, lagrange4(p0, p1, p2, p3, frac), Absolute)
}

func (d *DelayLine) ProcessEvent(ControllerEvent) {}

func (d *DelayLine) Finalize(s *State, timeStep float32, scratch []float32) {
	d.Buffer[d.writeIndex] = Eval(d.SignalIn, s, scratch)
	d.writeIndex = wrapIndex(d.writeIndex+1, len(d.Buffer))
}

// ContinuousControlModule holds the last 7-bit CC value for one (cc, channel)
// pair, scales it to [Min,Max], and low-pass filters toward it.
type ContinuousControlModule struct {
	CC, Channel uint8
	Min, Max    float32
	PoleHz      float32 // defaults to 50 Hz if zero
	OutIndex    int

	value float32 // 0..1 normalized latch, module-private
}

func (c *ContinuousControlModule) target() float32 {
	return (c.Max - c.Min)*c.value + c.Min
}

func (c *ContinuousControlModule) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	pole := c.PoleHz
	if pole == 0 {
		pole = 50
	}
	out := s.Get(c.OutIndex)
	k.Write(c.OutIndex, TwoPi32(pole)*(c.target()-out), Derivative)
}

func (c *ContinuousControlModule) ProcessEvent(ev ControllerEvent) {
	if ev.Kind == ContinuousControl && ev.CC == c.CC && ev.Channel == c.Channel {
		c.value = float32(ev.Value) / 127
	}
}

func (c *ContinuousControlModule) Finalize(s *State, timeStep float32, scratch []float32) {}

// MonoKeyboardTracker maintains an ordered set of pressed pitches and
// outputs the lowest-note policy's pitch/12, a gate, and the most
// recent aftertouch/velocity, normalized by 127 (spec §4.4).
type MonoKeyboardTracker struct {
	Channel                                       uint8
	PitchIdx, GateIdx, AftertouchIdx, VelocityIdx int

	pressed  []uint8 // module-private ordered set of held pitches
	atValue  float32
	velValue float32
}

func (m *MonoKeyboardTracker) lowest() (uint8, bool) {
	if len(m.pressed) == 0 {
		return 0, false
	}
	lo := m.pressed[0]
	for _, p := range m.pressed[1:] {
		if p < lo {
			lo = p
		}
	}
	return lo, true
}

func (m *MonoKeyboardTracker) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	if lo, ok := m.lowest(); ok {
		k.Write(m.PitchIdx, float32(lo)/12, Absolute)
		k.Write(m.GateIdx, 1, Absolute)
	} else {
		k.Write(m.PitchIdx, s.Get(m.PitchIdx), Absolute)
		k.Write(m.GateIdx, 0, Absolute)
	}
	k.Write(m.AftertouchIdx, m.atValue, Absolute)
	k.Write(m.VelocityIdx, m.velValue, Absolute)
}

func (m *MonoKeyboardTracker) ProcessEvent(ev ControllerEvent) {
	if ev.Channel != m.Channel {
		return
	}
	switch ev.Kind {
	case NoteOn:
		m.pressed = append(m.pressed, ev.Pitch)
		m.velValue = float32(ev.Velocity) / 127
	case NoteOff:
		for i, p := range m.pressed {
			if p == ev.Pitch {
				m.pressed = append(m.pressed[:i], m.pressed[i+1:]...)
				break
			}
		}
	case PolyAftertouch:
		m.atValue = float32(ev.Amount) / 127
	case ChannelAftertouch:
		m.atValue = float32(ev.Amount) / 127
	}
}

func (m *MonoKeyboardTracker) Finalize(s *State, timeStep float32, scratch []float32) {}

// NoiseGenerator is a 32-bit linear-congruential generator (Chamberlin's
// "Musical Applications of Microprocessors" constants) feeding a
// 4-sample ring, cubically interpolated at a stage-time-aligned
// position for a band-limited character.
type NoiseGenerator struct {
	A, B     uint32 // defaults 196314165, 907633515
	OutIndex int

	m    uint32 // module-private PRNG state, seeded via NewNoiseGenerator
	ring [4]float32
}

func NewNoiseGenerator(seed uint32, outIndex int) *NoiseGenerator {
	return &NoiseGenerator{A: 196314165, B: 907633515, OutIndex: outIndex, m: seed}
}

func (n *NoiseGenerator) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	x := 1 + k.DeltaTime()
	i0 := int(math.Floor(float64(x)))
	frac := x - float32(i0)
	p0 := n.ring[wrapIndex(i0-1, 4)]
	p1 := n.ring[wrapIndex(i0, 4)]
	p2 := n.ring[wrapIndex(i0+1, 4)]
	p3 := n.ring[wrapIndex(i0+2, 4)]
	k.Write(n.OutIndex, cubicCatmullRom(p0, p1, p2, p3, frac), Absolute)
}

func (n *NoiseGenerator) ProcessEvent(ControllerEvent) {}

func (n *NoiseGenerator) Finalize(s *State, timeStep float32, scratch []float32) {
	n.ring[3] = n.ring[2]
	n.ring[2] = n.ring[1]
	n.ring[1] = n.ring[0]
	n.m = n.m*n.A + n.B
	n.ring[0] = 2*(float32(n.m)/float32(math.MaxUint32)) - 1
}

// ZeroSource always contributes the constant 0 to its output slot; it
// exists so a patch can wire an unused input to a guaranteed-quiet
// source without special-casing a nil program.
type ZeroSource struct {
	OutIndex int
}

func (z *ZeroSource) Simulate(s *State, k *UpdateBuffer, scratch []float32) {
	k.Write(z.OutIndex, 0, Absolute)
}
func (z *ZeroSource) ProcessEvent(ControllerEvent)                           {}
func (z *ZeroSource) Finalize(s *State, timeStep float32, scratch []float32) {}

// MonoOutputSink copies a designated state slot into the stereo output
// latch during Finalize.
type MonoOutputSink struct {
	SignalIndex int
}

func (o *MonoOutputSink) Simulate(s *State, k *UpdateBuffer, scratch []float32) {}
func (o *MonoOutputSink) ProcessEvent(ControllerEvent)                         {}

func (o *MonoOutputSink) Finalize(s *State, timeStep float32, scratch []float32) {
	v := s.Get(o.SignalIndex)
	s.OutputSet(OutputLeft, v)
	s.OutputSet(OutputRight, v)
}
