package audio

import "math"

// Hook transforms a sample buffer inside the post-processing chain.
type Hook func(samples []float32) []float32

// ApplyHooks runs each hook over the samples in order.
func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// pcm16Sample maps one float sample to signed 16-bit PCM. Values clamp to
// [-1, 1], ties round to even so repeated runs emit identical bytes, and NaN
// maps to silence.
func pcm16Sample(s float32) int16 {
	f := float64(s)
	if math.IsNaN(f) {
		return 0
	}

	f = math.Max(-1.0, math.Min(1.0, f))

	return int16(math.RoundToEven(f * 32767))
}
