package testutil

import (
	"testing"

	"github.com/example/go-kitten-tts/internal/audio"
)

// AssertValidWAV checks that data is a WAV file in the synthesizer's native
// format (24000 Hz mono 16-bit PCM) with at least one sample. It decodes
// through the same path production consumers use, so a container the decoder
// rejects fails here too.
func AssertValidWAV(tb testing.TB, data []byte) {
	tb.Helper()

	samples, err := audio.DecodeWAV(data)
	if err != nil {
		tb.Fatalf("WAV: %v", err)
	}

	if len(samples) == 0 {
		tb.Fatal("WAV: data chunk contains zero samples")
	}
}

// AssertWAVDurationApprox asserts that the WAV audio duration falls within
// [minSec, maxSec].
func AssertWAVDurationApprox(tb testing.TB, data []byte, minSec, maxSec float64) {
	tb.Helper()

	samples, err := audio.DecodeWAV(data)
	if err != nil {
		tb.Fatalf("WAV duration check: %v", err)
	}

	durationSec := float64(len(samples)) / float64(audio.ExpectedSampleRate)
	if durationSec < minSec || durationSec > maxSec {
		tb.Fatalf("WAV duration %.3fs out of expected range [%.3fs, %.3fs]", durationSec, minSec, maxSec)
	}
}

// AssertWAVNotSilent asserts that at least one sample clears the silence
// floor. Synthesized speech always does; all-zero output points at a broken
// voice vector or graph feed.
func AssertWAVNotSilent(tb testing.TB, data []byte) {
	tb.Helper()

	samples, err := audio.DecodeWAV(data)
	if err != nil {
		tb.Fatalf("WAV silence check: %v", err)
	}

	const floor = 1e-3
	for _, s := range samples {
		if s > floor || s < -floor {
			return
		}
	}

	tb.Fatalf("WAV: all %d samples below silence floor %v", len(samples), floor)
}
