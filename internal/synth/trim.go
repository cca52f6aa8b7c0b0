package synth

// Trim windows in samples at the model's native 24 kHz rate. The graph pads
// its output with warm-up and tail artifacts of roughly these lengths.
const (
	startTrimSamples = 5000
	endTrimSamples   = 10000
)

// TrimEdges cuts the fixed warm-up and tail windows off a raw waveform.
// Clips at or below the combined window length are returned whole; cutting
// them would silence short utterances entirely.
func TrimEdges(samples []float32) []float32 {
	if len(samples) <= startTrimSamples+endTrimSamples {
		return samples
	}

	return samples[startTrimSamples : len(samples)-endTrimSamples]
}
