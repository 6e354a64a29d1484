package synth

import "testing"

// TestEnvelopeAttackReleaseTiming is scenario E3: an attack-release
// envelope gated on for 30ms with a 10ms attack should reach its peak
// well before the gate drops, then decay back toward 0 once it does.
func TestEnvelopeAttackReleaseTiming(t *testing.T) {
	const dt = float32(1.0 / 44100)
	const gateSlot = ReservedSlots
	cycleSlot, outSlot := ReservedSlots+1, ReservedSlots+2

	gate := float32(1)
	env := &Envelope{
		Kind:        AttackRelease,
		SignalIn:    StateProgram(gateSlot),
		AttackIn:    ConstProgram(0.01),
		DecayIn:     ConstProgram(0.05),
		ShapeSelect: ConstProgram(0.5),
		OutIndex:    outSlot,
		CycleIndex:  cycleSlot,
	}
	e := NewEngine(outSlot+1, []Module{env}, RK4Tableau, 1, 1)

	// Drive the gate slot manually each step since nothing else writes
	// it in this isolated test.
	step := func() {
		e.State().Set(gateSlot, gate)
		e.Step(dt)
	}

	env.state = envAttack
	for i := 0; i < int(0.03*44100); i++ { // 30ms: past a 10ms attack
		step()
	}
	peak := e.State().Get(outSlot)
	if peak < 0.5 {
		t.Fatalf("envelope did not rise: out=%v after 30ms with 10ms attack", peak)
	}

	gate = 0
	for i := 0; i < int(0.2*44100); i++ { // 200ms: should fully decay
		step()
	}
	final := e.State().Get(outSlot)
	if final > 0.05 {
		t.Fatalf("envelope did not decay: out=%v after release", final)
	}
}

// TestEnvelopeOutputStaysInUnitRange is invariant 3: cycle and output
// never leave [0,1].
func TestEnvelopeOutputStaysInUnitRange(t *testing.T) {
	const dt = float32(1.0 / 44100)
	gateSlot := ReservedSlots
	cycleSlot, outSlot := ReservedSlots+1, ReservedSlots+2

	env := &Envelope{
		Kind:        Cyclic,
		SignalIn:    StateProgram(gateSlot),
		AttackIn:    ConstProgram(0.005),
		DecayIn:     ConstProgram(0.005),
		ShapeSelect: ConstProgram(0.2),
		OutIndex:    outSlot,
		CycleIndex:  cycleSlot,
	}
	env.state = envAttack
	e := NewEngine(outSlot+1, []Module{env}, RK4Tableau, 1, 1)

	for i := 0; i < 44100; i++ {
		e.Step(dt)
		cycle, out := e.State().Get(cycleSlot), e.State().Get(outSlot)
		if cycle < 0 || cycle > 1 {
			t.Fatalf("step %d: cycle = %v, outside [0,1]", i, cycle)
		}
		if out < 0 || out > 1 {
			t.Fatalf("step %d: out = %v, outside [0,1]", i, out)
		}
	}
}

func TestBlackmanAndTriangleWindowsAtEndpoints(t *testing.T) {
	if v := triangleWindow(0); v != 0 {
		t.Errorf("triangleWindow(0) = %v, want 0", v)
	}
	if v := triangleWindow(0.5); v != 1 {
		t.Errorf("triangleWindow(0.5) = %v, want 1", v)
	}
	if v := blackmanWindow(0); v < -1e-5 || v > 1e-5 {
		t.Errorf("blackmanWindow(0) = %v, want ~0", v)
	}
}

func TestRiseDecayFloorsAtMinTime(t *testing.T) {
	if got := riseDecay(0); got != 1/envMinTime {
		t.Errorf("riseDecay(0) = %v, want %v", got, 1/envMinTime)
	}
}
