package audio

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodingError reports a failure while serializing samples into the WAV
// container. Sample content alone never fails encoding.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode wav: %s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// EncodeWAV encodes float32 PCM samples as a mono 16-bit WAV byte slice at
// the given sample rate. Quantization happens here rather than inside the
// encoder so the emitted bytes are identical across runs and platforms.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	pcm := make([]int, len(samples))
	for i, s := range samples {
		pcm[i] = int(pcm16Sample(s))
	}

	var buf bytes.Buffer

	// wav.NewEncoder requires an io.WriteSeeker; bytes.Buffer is not one.
	// Use a seekable wrapper.
	sw := &seekBuffer{buf: &buf}

	enc := wav.NewEncoder(sw, sampleRate, ExpectedBitDepth, ExpectedChannels, 1) // 1 = PCM

	pcmBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: ExpectedChannels},
		Data:           pcm,
		SourceBitDepth: ExpectedBitDepth,
	}

	if err := enc.Write(pcmBuf); err != nil {
		return nil, &EncodingError{Op: "writing PCM", Err: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &EncodingError{Op: "closing encoder", Err: err}
	}

	return buf.Bytes(), nil
}

// WriteWAV encodes samples and writes the complete WAV to w. A sink failure
// surfaces as an *EncodingError.
func WriteWAV(w io.Writer, samples []float32, sampleRate int) error {
	data, err := EncodeWAV(samples, sampleRate)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return &EncodingError{Op: "writing to sink", Err: err}
	}

	return nil
}

// seekBuffer wraps a bytes.Buffer to satisfy io.WriteSeeker.
type seekBuffer struct {
	buf *bytes.Buffer
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	// If writing at the end, just append.
	if s.pos == s.buf.Len() {
		n, err := s.buf.Write(p)
		s.pos += n
		return n, err
	}
	// Writing in the middle: overwrite existing bytes.
	data := s.buf.Bytes()
	n := copy(data[s.pos:], p)
	if n < len(p) {
		// Extend the buffer for the remainder.
		data = append(data, p[n:]...)
		// Reset buffer with extended data.
		s.buf.Reset()
		s.buf.Write(data)
		n = len(p)
	}
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case 0: // io.SeekStart
		newPos = int(offset)
	case 1: // io.SeekCurrent
		newPos = s.pos + int(offset)
	case 2: // io.SeekEnd
		newPos = s.buf.Len() + int(offset)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("seek before start")
	}
	s.pos = newPos
	return int64(newPos), nil
}
