// interpolation.go - shared interpolation kernels used by the delay
// line, the wavetable oscillator, and the noise generator (spec §4.7).
//
// Grounded on the teacher's audio_lut.go lookup-table interpolation
// style (linear interpolation between adjacent table entries) and on
// original_source/synth-engine/src/interpolation.rs for the exact
// Catmull-Rom and 4-tap Lagrange coefficients.

package synth

// wrapIndex folds i into [0, length) without the sign bug a plain `%`
// has for negative i.
func wrapIndex(i, length int) int {
	return ((i % length) + length) % length
}

// lerpSample linearly interpolates between a and b at fraction x in [0,1).
func lerpSample(a, b, x float32) float32 {
	return a + x*(b-a)
}

// cubicCatmullRom evaluates the Catmull-Rom cubic through p1..p2 at
// x in [0,1), using p0 and p3 as the neighboring control points.
func cubicCatmullRom(p0, p1, p2, p3, x float32) float32 {
	a := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	b := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c := -0.5*p0 + 0.5*p2
	return ((a*x+b)*x+c)*x + p1
}

// lagrange4 evaluates the 4-tap Lagrange interpolant through p0..p3 at
// x in [0,1), using the coefficients of spec §4.7 indexed by polynomial
// degree: C1=[-1/6,1/2,-1/2,1/6] scales x^3, C2=[1/2,-1,1/2,0] scales
// x^2, C3=[-1/3,-1/2,1,-1/6] scales x, C4=[0,1,0,0] is the constant
// term, with per-tap weight wi = C1[i]x^3 + C2[i]x^2 + C3[i]x + C4[i].
func lagrange4(p0, p1, p2, p3, x float32) float32 {
	x2 := x * x
	x3 := x2 * x

	w0 := -x3/6 + x2/2 - x/3
	w1 := x3/2 - x2 - x/2 + 1
	w2 := -x3/2 + x2/2 + x
	w3 := x3/6 - x/6

	return p0*w0 + p1*w1 + p2*w2 + p3*w3
}
