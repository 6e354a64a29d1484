package synth

import "testing"

func TestWrapIndex(t *testing.T) {
	cases := []struct {
		i, length, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 0},
		{-1, 4, 3},
		{-5, 4, 3},
	}
	for _, c := range cases {
		if got := wrapIndex(c.i, c.length); got != c.want {
			t.Errorf("wrapIndex(%d, %d) = %d, want %d", c.i, c.length, got, c.want)
		}
	}
}

func TestLerpSampleEndpoints(t *testing.T) {
	if got := lerpSample(1, 3, 0); got != 1 {
		t.Errorf("lerpSample at x=0 = %v, want 1", got)
	}
	if got := lerpSample(1, 3, 1); got != 3 {
		t.Errorf("lerpSample at x=1 = %v, want 3", got)
	}
	if got := lerpSample(1, 3, 0.5); got != 2 {
		t.Errorf("lerpSample at x=0.5 = %v, want 2", got)
	}
}

// Catmull-Rom is guaranteed to reproduce affine data exactly: for
// p_i = i, the interpolant between p1 and p2 at fraction x must equal
// 1+x.
func TestCubicCatmullRomAffineReproduction(t *testing.T) {
	for _, x := range []float32{0, 0.25, 0.5, 0.75} {
		got := cubicCatmullRom(0, 1, 2, 3, x)
		want := 1 + x
		if d := got - want; d > 1e-5 || d < -1e-5 {
			t.Errorf("cubicCatmullRom affine at x=%v = %v, want %v", x, got, want)
		}
	}
}

func TestCubicCatmullRomEndpoints(t *testing.T) {
	if got := cubicCatmullRom(0, 1, 2, 3, 0); got != 1 {
		t.Errorf("cubicCatmullRom at x=0 = %v, want p1=1", got)
	}
}

// lagrange4 implements the exact per-tap weight polynomials of spec
// §4.7 (coefficients indexed by polynomial degree, not by tap); this
// test recomputes those weights independently to guard the
// coefficients against transcription error.
func TestLagrange4MatchesSpecCoefficients(t *testing.T) {
	eval := func(p0, p1, p2, p3, x float32) float32 {
		x2 := x * x
		x3 := x2 * x
		w0 := -x3/6 + x2/2 - x/3
		w1 := x3/2 - x2 - x/2 + 1
		w2 := -x3/2 + x2/2 + x
		w3 := x3/6 - x/6
		return p0*w0 + p1*w1 + p2*w2 + p3*w3
	}
	for _, x := range []float32{0, 0.25, 0.5, 0.75} {
		want := eval(-1, 0, 1, 2, x)
		got := lagrange4(-1, 0, 1, 2, x)
		if d := got - want; d > 1e-6 || d < -1e-6 {
			t.Errorf("lagrange4(x=%v) = %v, want %v", x, got, want)
		}
	}
}

// lagrange4 is also guaranteed to reproduce affine data exactly: for
// p_i = i-1 (taps at positions -1,0,1,2), the interpolant between p1
// and p2 at fraction x must equal x.
func TestLagrange4AffineReproduction(t *testing.T) {
	for _, x := range []float32{0, 0.25, 0.5, 0.75, 1} {
		got := lagrange4(-1, 0, 1, 2, x)
		want := x
		if d := got - want; d > 1e-5 || d < -1e-5 {
			t.Errorf("lagrange4 affine at x=%v = %v, want %v", x, got, want)
		}
	}
}
