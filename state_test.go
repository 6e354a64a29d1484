package synth

import "testing"

func TestStateGetSet(t *testing.T) {
	s := NewState(4)
	s.Set(2, 1.5)
	if got := s.Get(2); got != 1.5 {
		t.Fatalf("Get(2) = %v, want 1.5", got)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
}

func TestStateReservedSlotsFloor(t *testing.T) {
	s := NewState(0)
	if s.Len() != ReservedSlots {
		t.Fatalf("Len() = %d, want %d", s.Len(), ReservedSlots)
	}
}

func TestStateOutputLatch(t *testing.T) {
	s := NewState(4)
	s.OutputSet(OutputLeft, 0.25)
	s.OutputSet(OutputRight, -0.25)
	if s.OutputGet(OutputLeft) != 0.25 || s.OutputGet(OutputRight) != -0.25 {
		t.Fatalf("output latch mismatch: L=%v R=%v", s.OutputGet(OutputLeft), s.OutputGet(OutputRight))
	}
}

func TestStateCopyFrom(t *testing.T) {
	a := NewState(4)
	b := NewState(4)
	a.Set(3, 9)
	b.CopyFrom(a)
	if b.Get(3) != 9 {
		t.Fatalf("CopyFrom did not propagate slot 3")
	}
}

// TestCombineSlotEulerDerivative exercises the mixed-class rule with a single stage,
// matching Euler's tableau (w=[1], c=[0]).
func TestCombineSlotEulerDerivative(t *testing.T) {
	stage := NewUpdateBuffer(1)
	stage.Reset(0, 0.1)
	stage.Write(0, 2.0, Derivative)

	got := combineSlot(0, 1.0, []*UpdateBuffer{stage}, []float32{1}, []float32{0}, 0.1)
	want := float32(1.0 + 0.1*2.0)
	if got != want {
		t.Fatalf("combineSlot derivative = %v, want %v", got, want)
	}
}

func TestCombineSlotAbsoluteBaseline(t *testing.T) {
	stage := NewUpdateBuffer(1)
	stage.Reset(0, 0.1)
	stage.Write(0, 5.0, Absolute)

	got := combineSlot(0, 1.0, []*UpdateBuffer{stage}, []float32{1}, []float32{0}, 0.1)
	if got != 5.0 {
		t.Fatalf("combineSlot absolute baseline = %v, want 5.0", got)
	}
}

// TestCombineSlotAbsoluteCorrection checks the j>0 correction path: an
// Absolute write at a later stage is folded in relative to the stage-0
// baseline and divided by that stage's node factor.
func TestCombineSlotAbsoluteCorrection(t *testing.T) {
	stage0 := NewUpdateBuffer(1)
	stage0.Reset(0, 0.1)
	stage0.Write(0, 10.0, Absolute)

	stage1 := NewUpdateBuffer(1)
	stage1.Reset(0.05, 0.1)
	stage1.Write(0, 12.0, Absolute)

	w := []float32{0.5, 0.5}
	c := []float32{0, 0.5}
	got := combineSlot(0, 0.0, []*UpdateBuffer{stage0, stage1}, w, c, 0.1)
	want := float32(10.0) + (float32(12.0)-float32(10.0))*w[1]/c[1]
	if got != want {
		t.Fatalf("combineSlot absolute correction = %v, want %v", got, want)
	}
}

func TestCombineSlotUnwrittenKeepsBase(t *testing.T) {
	stage := NewUpdateBuffer(1)
	stage.Reset(0, 0.1)
	got := combineSlot(0, 3.0, []*UpdateBuffer{stage}, []float32{1}, []float32{0}, 0.1)
	if got != 3.0 {
		t.Fatalf("combineSlot unwritten = %v, want base 3.0 unchanged", got)
	}
}

func TestApplyAcrossSlots(t *testing.T) {
	base := NewState(2)
	base.Set(0, 1)
	base.Set(1, 2)
	dst := NewState(2)

	stage := NewUpdateBuffer(2)
	stage.Reset(0, 0.5)
	stage.Write(0, 4.0, Derivative) // 1 + 0.5*4 = 3
	stage.Write(1, 7.0, Absolute)   // baseline replace -> 7

	Apply(dst, base, []*UpdateBuffer{stage}, []float32{1}, []float32{0}, 0.5)

	if dst.Get(0) != 3 {
		t.Errorf("slot 0 = %v, want 3", dst.Get(0))
	}
	if dst.Get(1) != 7 {
		t.Errorf("slot 1 = %v, want 7", dst.Get(1))
	}
}
