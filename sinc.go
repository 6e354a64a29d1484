// sinc.go - the windowed-sinc kernel and half-rate downsampler used to
// build a wavetable's mipmap cascade at construction time (spec §4.8).
// Never called on the realtime path: mipmaps are built once before the
// engine starts running, matching the "no allocation inside step" rule
// of spec §5.

package synth

import "math"

// sincKernel builds a length-(M+1) windowed-sinc lowpass kernel with
// normalized cutoff fc (cycles per sample, i.e. a fraction of the
// sample rate; 0.25 is half of Nyquist), Blackman-windowed and
// normalized so its coefficients sum to 1.
func sincKernel(fc float64, m int) []float32 {
	taps := make([]float64, m+1)
	half := float64(m) / 2
	for i := 0; i <= m; i++ {
		x := float64(i) - half
		var v float64
		if x == 0 {
			v = 1
		} else {
			v = math.Sin(2*math.Pi*fc*x) / x
		}
		// Blackman window.
		w := 0.42 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(m)) + 0.08*math.Cos(4*math.Pi*float64(i)/float64(m))
		taps[i] = v * w
	}
	var sum float64
	for _, t := range taps {
		sum += t
	}
	out := make([]float32, m+1)
	for i, t := range taps {
		out[i] = float32(t / sum)
	}
	return out
}

// convolveWrap convolves samples with kernel, wrapping the kernel's
// support modulo len(samples) so the result has the same length as the
// input (the wavetable is a single periodic cycle).
func convolveWrap(samples []float32, kernel []float32) []float32 {
	n := len(samples)
	half := len(kernel) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var acc float32
		for k, coeff := range kernel {
			idx := wrapIndex(i+k-half, n)
			acc += samples[idx] * coeff
		}
		out[i] = acc
	}
	return out
}

// downsampleHalf lowpass-filters samples with a cutoff-0.25 sinc kernel
// of length m+1 and keeps every second sample, producing the next,
// half-rate level of a wavetable mipmap.
func downsampleHalf(m int, samples []float32) []float32 {
	filtered := convolveWrap(samples, sincKernel(0.25, m))
	out := make([]float32, (len(filtered)+1)/2)
	for i := range out {
		out[i] = filtered[i*2]
	}
	return out
}

// buildMipmap builds the full half-rate cascade starting from the
// source table, stopping once a level would shrink below 4 samples.
func buildMipmap(source []float32, m int) [][]float32 {
	levels := [][]float32{source}
	cur := source
	for len(cur) >= 8 {
		cur = downsampleHalf(m, cur)
		levels = append(levels, cur)
	}
	return levels
}
