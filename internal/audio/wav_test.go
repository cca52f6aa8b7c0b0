package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// makeWAV builds a minimal valid WAV file from parameters for testing.
func makeWAV(sampleRate uint32, numChannels uint16, bitDepth uint16, numSamples int) []byte {
	blockAlign := numChannels * bitDepth / 8
	byteRate := sampleRate * uint32(blockAlign)
	dataSize := uint32(numSamples) * uint32(blockAlign)
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16)) // chunk size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	_ = binary.Write(buf, binary.LittleEndian, numChannels)
	_ = binary.Write(buf, binary.LittleEndian, sampleRate)
	_ = binary.Write(buf, binary.LittleEndian, byteRate)
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, bitDepth)

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	for range numSamples {
		_ = binary.Write(buf, binary.LittleEndian, int16(0))
	}

	return buf.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	t.Run("decodes valid 24kHz mono 16-bit WAV", func(t *testing.T) {
		wav := makeWAV(24000, 1, 16, 100)
		samples, err := DecodeWAV(wav)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(samples) != 100 {
			t.Errorf("got %d samples, want 100", len(samples))
		}
	})

	t.Run("rejects wrong sample rate", func(t *testing.T) {
		wav := makeWAV(44100, 1, 16, 10)
		_, err := DecodeWAV(wav)
		if err == nil {
			t.Fatal("expected error for wrong sample rate")
		}
		if !errors.Is(err, ErrFormatMismatch) {
			t.Errorf("expected ErrFormatMismatch, got %v", err)
		}
	})

	t.Run("rejects stereo", func(t *testing.T) {
		wav := makeWAV(24000, 2, 16, 10)
		_, err := DecodeWAV(wav)
		if err == nil {
			t.Fatal("expected error for stereo")
		}
		if !errors.Is(err, ErrFormatMismatch) {
			t.Errorf("expected ErrFormatMismatch, got %v", err)
		}
	})

	t.Run("rejects invalid WAV data", func(t *testing.T) {
		_, err := DecodeWAV([]byte("not a wav file"))
		if err == nil {
			t.Fatal("expected error for invalid WAV")
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := DecodeWAV(nil)
		if err == nil {
			t.Fatal("expected error for nil input")
		}
	})
}

func TestEncodeWAV(t *testing.T) {
	t.Run("produces valid WAV with RIFF header", func(t *testing.T) {
		samples := make([]float32, 100)
		data, err := EncodeWAV(samples, ExpectedSampleRate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) < 44 {
			t.Fatalf("WAV too short: %d bytes", len(data))
		}
		if string(data[:4]) != "RIFF" {
			t.Errorf("missing RIFF header")
		}
		if string(data[8:12]) != "WAVE" {
			t.Errorf("missing WAVE identifier")
		}
	})

	t.Run("encodes correct sample rate and channels", func(t *testing.T) {
		samples := make([]float32, 50)
		data, err := EncodeWAV(samples, ExpectedSampleRate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Parse fmt chunk: sample rate at byte 24, channels at byte 22.
		sampleRate := binary.LittleEndian.Uint32(data[24:28])
		numChans := binary.LittleEndian.Uint16(data[22:24])
		bitDepth := binary.LittleEndian.Uint16(data[34:36])

		if sampleRate != ExpectedSampleRate {
			t.Errorf("sample rate = %d, want %d", sampleRate, ExpectedSampleRate)
		}
		if numChans != ExpectedChannels {
			t.Errorf("channels = %d, want %d", numChans, ExpectedChannels)
		}
		if bitDepth != ExpectedBitDepth {
			t.Errorf("bit depth = %d, want %d", bitDepth, ExpectedBitDepth)
		}
	})

	t.Run("honors a non-default sample rate", func(t *testing.T) {
		data, err := EncodeWAV([]float32{0}, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
			t.Errorf("sample rate = %d, want 16000", got)
		}
	})

	t.Run("rejects invalid sample rate", func(t *testing.T) {
		for _, rate := range []int{0, -1} {
			if _, err := EncodeWAV([]float32{0.1}, rate); err == nil {
				t.Errorf("EncodeWAV(rate=%d) = nil; want error", rate)
			}
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		samples := []float32{0.1, -0.7, 0.5, float32(math.NaN()), 1.5}
		first, err := EncodeWAV(samples, ExpectedSampleRate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := EncodeWAV(samples, ExpectedSampleRate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Error("repeated encode produced different bytes")
		}
	})
}

func TestEncodeWAVQuantization(t *testing.T) {
	// Half amplitude sits exactly between 16383 and 16384; ties go to even.
	samples := []float32{0.0, 1.0, -1.0, 0.5, -0.5, 2.0, -2.0, float32(math.NaN())}
	want := []int16{0, 32767, -32767, 16384, -16384, 32767, -32767, 0}

	data, err := EncodeWAV(samples, ExpectedSampleRate)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if len(data) < 44+len(want)*2 {
		t.Fatalf("WAV too short: %d bytes", len(data))
	}

	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(data[44+i*2 : 46+i*2]))
		if got != w {
			t.Errorf("pcm[%d] = %d; want %d", i, got, w)
		}
	}
}

func TestDecodeEncodeRoundtrip(t *testing.T) {
	// Create samples with known values.
	original := []float32{0.0, 0.5, -0.5, 1.0, -1.0}
	encoded, err := EncodeWAV(original, ExpectedSampleRate)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	decoded, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("roundtrip: got %d samples, want %d", len(decoded), len(original))
	}

	// 16-bit quantization introduces error up to ~1/32768.
	const tolerance = 1.0 / 32768.0 * 2
	for i, want := range original {
		got := decoded[i]
		if math.Abs(float64(got-want)) > tolerance {
			t.Errorf("sample[%d] = %f, want %f (tolerance %f)", i, got, want, tolerance)
		}
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("sink closed") }

func TestWriteWAV(t *testing.T) {
	samples := []float32{0.1, -0.1, 0.2, -0.2}

	t.Run("matches EncodeWAV output", func(t *testing.T) {
		want, err := EncodeWAV(samples, ExpectedSampleRate)
		if err != nil {
			t.Fatalf("EncodeWAV: %v", err)
		}

		var buf bytes.Buffer
		if err := WriteWAV(&buf, samples, ExpectedSampleRate); err != nil {
			t.Fatalf("WriteWAV: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Error("WriteWAV bytes differ from EncodeWAV")
		}
	})

	t.Run("sink failure yields EncodingError", func(t *testing.T) {
		err := WriteWAV(failWriter{}, samples, ExpectedSampleRate)
		if err == nil {
			t.Fatal("expected sink error")
		}
		var encErr *EncodingError
		if !errors.As(err, &encErr) {
			t.Fatalf("error type %T, want *EncodingError", err)
		}
	})

	t.Run("invalid sample rate", func(t *testing.T) {
		if err := WriteWAV(&bytes.Buffer{}, samples, 0); err == nil {
			t.Error("expected error for sample rate 0")
		}
	})
}
