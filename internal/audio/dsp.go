package audio

import "math"

// dcBlockCutoffHz sets the high-pass corner for DCBlock. Low enough to keep
// all voiced content, high enough to settle within a fraction of a second.
const dcBlockCutoffHz = 20.0

// PeakNormalize scales samples in place so the peak amplitude reaches 1.0.
// Silence is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, v := range samples {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return samples
	}

	scale := 1.0 / peak
	for i := range samples {
		samples[i] *= scale
	}

	return samples
}

// DCBlock removes DC offset in place using a one-pole high-pass filter:
//
//	y[n] = x[n] - x[n-1] + r*y[n-1]
func DCBlock(samples []float32, sampleRate int) []float32 {
	if sampleRate < 1 || len(samples) == 0 {
		return samples
	}

	r := 1.0 - 2.0*math.Pi*dcBlockCutoffHz/float64(sampleRate)

	var prevIn, prevOut float64
	for i, v := range samples {
		in := float64(v)
		out := in - prevIn + r*prevOut
		samples[i] = float32(out)
		prevIn, prevOut = in, out
	}

	return samples
}

// FadeIn applies a linear fade-in ramp in place over the given duration in
// milliseconds. The ramp starts at zero and leaves samples past the ramp
// untouched.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSamples(len(samples), sampleRate, ms)
	for i := 0; i < n; i++ {
		samples[i] *= float32(i) / float32(n)
	}

	return samples
}

// FadeOut applies a linear fade-out ramp in place over the given duration in
// milliseconds. The ramp ends at zero.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSamples(len(samples), sampleRate, ms)
	for i := 0; i < n; i++ {
		idx := len(samples) - 1 - i
		samples[idx] *= float32(i) / float32(n)
	}

	return samples
}

func fadeSamples(total, sampleRate int, ms float64) int {
	if sampleRate < 1 || ms <= 0 {
		return 0
	}

	n := int(ms / 1000.0 * float64(sampleRate))
	if n > total {
		n = total
	}

	return n
}
