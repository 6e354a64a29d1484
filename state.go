// state.go - the flat state vector and per-stage update buffer shared by
// every module in the simulation graph.
//
// Grounded on the teacher's register/state layout conventions in
// audio_chip.go (fixed-size arrays, no allocation on the hot path) and on
// synth-engine/src/state.rs for the differentiable/absolute combine split.

package synth

// UpdateClass tags how the integrator should fold a stage's write to a
// given slot into the running state.
type UpdateClass uint8

const (
	// Derivative writes are dS/dt; the integrator accumulates them
	// weighted by dt.
	Derivative UpdateClass = iota
	// Absolute writes are the algebraic value of the slot; stage 0 sets
	// the baseline and later stages are corrections relative to it.
	Absolute
)

// State is the fixed-size, ordered vector of floats shared by the whole
// module graph, plus the two-slot stereo output latch at indices 0 and 1.
// It is owned exclusively by the Integrator; modules read it through
// Get and write to it through Set; the latch slots are written through
// OutputSet, which only the sink modules' Finalize should call.
type State struct {
	values []float32
}

// NewState allocates a state vector with n total slots (including the
// two reserved output-latch slots at indices 0 and 1).
func NewState(n int) *State {
	if n < ReservedSlots {
		n = ReservedSlots
	}
	return &State{values: make([]float32, n)}
}

// Len returns the number of slots in the vector.
func (s *State) Len() int { return len(s.values) }

// Get reads slot i. Out-of-bounds reads are a build-time programming
// error (spec §7); the allocator guarantees valid indices, so no bounds
// check is performed on the hot path beyond what the slice does.
func (s *State) Get(i int) float32 { return s.values[i] }

// Set writes slot i.
func (s *State) Set(i int, v float32) { s.values[i] = v }

// OutputGet reads a stereo latch channel (0 = left, 1 = right).
func (s *State) OutputGet(ch int) float32 { return s.values[ch] }

// OutputSet writes a stereo latch channel.
func (s *State) OutputSet(ch int, v float32) { s.values[ch] = v }

// CopyFrom overwrites this vector's contents with src's. Both must have
// the same length.
func (s *State) CopyFrom(src *State) { copy(s.values, src.values) }

// UpdateBuffer is the scratch structure the integrator hands to every
// module once per RK stage: a slot-indexed array of writes plus the
// update-class tag for each, and the two context scalars every module's
// Simulate may need (spec §4.1).
type UpdateBuffer struct {
	writes    []float32
	classes   []UpdateClass
	written   []bool
	deltaTime float32
	timeStep  float32
}

// NewUpdateBuffer allocates one update buffer sized to n slots. Buffers
// are allocated once (per RK stage slot) and reused across frames.
func NewUpdateBuffer(n int) *UpdateBuffer {
	return &UpdateBuffer{
		writes:  make([]float32, n),
		classes: make([]UpdateClass, n),
		written: make([]bool, n),
	}
}

// Reset clears the buffer for reuse and sets this stage's context.
func (u *UpdateBuffer) Reset(deltaTime, timeStep float32) {
	for i := range u.written {
		u.written[i] = false
		u.writes[i] = 0
	}
	u.deltaTime = deltaTime
	u.timeStep = timeStep
}

// Write records module output for slot i with the given update class.
// A module must not write the same slot twice within one stage; the
// contract in spec §3 guarantees each slot has exactly one owner.
func (u *UpdateBuffer) Write(i int, value float32, class UpdateClass) {
	u.writes[i] = value
	u.classes[i] = class
	u.written[i] = true
}

// DeltaTime returns the time offset of this stage within the current step.
func (u *UpdateBuffer) DeltaTime() float32 { return u.deltaTime }

// TimeStep returns the full step size (dt) of the current frame.
func (u *UpdateBuffer) TimeStep() float32 { return u.timeStep }

// combineSlot implements the mixed-class rule of spec §4.6 for a single
// slot across stages 0..len(stages)-1, using per-stage weights w and
// node factors c (dt is the step size; the caller passes c=1.0 for
// every stage on the final b-weighted combine).
func combineSlot(i int, base float32, stages []*UpdateBuffer, w, c []float32, dt float32) float32 {
	prev := base
	var accum float32
	for j, stage := range stages {
		if !stage.written[i] {
			continue
		}
		switch stage.classes[i] {
		case Derivative:
			accum += w[j] * stage.writes[i] * dt
		case Absolute:
			if j == 0 {
				prev = stage.writes[i]
			} else {
				accum += (stage.writes[i] - prev) * w[j] / c[j]
			}
		}
	}
	return prev + accum
}

// Apply folds a set of per-stage UpdateBuffers into dst, reading the
// base values from base. c holds each stage's RK node factor (the
// implicit c[0] is never read since an Absolute stage-0 write sets the
// baseline rather than a correction). It is used twice by the
// integrator: once per stage to build the temporary state from the
// stages computed so far (w = a[i][0:i], c = nodes[0:i]), and once at
// the end of a step to combine all stages into the running state
// (w = b, c = all 1.0 — the final combine's effective node factor per
// spec §4.6, not the tableau's c).
func Apply(dst, base *State, stages []*UpdateBuffer, w []float32, c []float32, dt float32) {
	for i := range dst.values {
		dst.values[i] = combineSlot(i, base.values[i], stages, w, c, dt)
	}
}
