package server_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/example/go-kitten-tts/internal/server"
	"github.com/example/go-kitten-tts/internal/synth"
	"github.com/example/go-kitten-tts/internal/voice"
)

// stubSynthesizer implements server.Synthesizer for tests.
type stubSynthesizer struct {
	res synth.Result
	err error

	mu   sync.Mutex
	reqs []synth.Request
}

func (s *stubSynthesizer) Synthesize(_ context.Context, req synth.Request) (synth.Result, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()

	if s.err != nil {
		return synth.Result{}, s.err
	}
	return s.res, nil
}

func (s *stubSynthesizer) lastRequest(t *testing.T) synth.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reqs) == 0 {
		t.Fatal("synthesizer was never called")
	}
	return s.reqs[len(s.reqs)-1]
}

// stubVoiceLister implements server.VoiceLister for tests.
type stubVoiceLister struct {
	voices []server.VoiceInfo
	err    error
}

func (v *stubVoiceLister) ListVoices() ([]server.VoiceInfo, error) {
	return v.voices, v.err
}

func okResult() synth.Result {
	return synth.Result{
		Samples:     []float32{0, 0.25, -0.25, 0.5},
		SampleRate:  24000,
		Voice:       "expr-voice-5-m",
		VoiceSource: voice.SourceArchive,
		TokenCount:  6,
	}
}

func newTestHandler(synthesizer server.Synthesizer, voices server.VoiceLister) http.Handler {
	return server.NewHandler(synthesizer, voices)
}

func postTTS(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	err := json.NewDecoder(rec.Body).Decode(&body)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}

	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// GET /voices
// ---------------------------------------------------------------------------

func TestVoices_ReturnsJSONArray(t *testing.T) {
	voices := []server.VoiceInfo{
		{Name: "expr-voice-2-f"},
		{Name: "expr-voice-3-m", Placeholder: true},
	}
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{voices: voices})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var got []server.VoiceInfo
	err := json.NewDecoder(rec.Body).Decode(&got)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("want 2 voices, got %d", len(got))
	}

	if got[0].Name != "expr-voice-2-f" || got[1].Name != "expr-voice-3-m" {
		t.Errorf("unexpected voice names: %v", got)
	}
	if got[0].Placeholder || !got[1].Placeholder {
		t.Errorf("unexpected placeholder flags: %v", got)
	}
}

func TestVoices_ReturnsEmptyArrayWhenNoVoices(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	if body := rec.Body.String(); !bytes.Contains([]byte(body), []byte("[]")) {
		t.Errorf("want empty JSON array, got %q", body)
	}
}

func TestVoices_ArchiveErrorReturns500(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{err: errVoicesBroken})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /tts
// ---------------------------------------------------------------------------

func TestTTS_ReturnsMissingBodyAs400(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tts", nil)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}

	var body map[string]string
	err := json.NewDecoder(rec.Body).Decode(&body)
	if err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	if body["error"] == "" {
		t.Error("want non-empty error field")
	}
}

func TestTTS_ReturnsEmptyTextAs400(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{})

	rec := postTTS(h, `{"text":"","voice":"expr-voice-5-m"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestTTS_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{res: okResult()}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tts", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", rec.Code)
	}
}

func TestTTS_ReturnsWAVBytesOnSuccess(t *testing.T) {
	stub := &stubSynthesizer{res: okResult()}
	h := newTestHandler(stub, &stubVoiceLister{})

	rec := postTTS(h, `{"text":"Hello world.","voice":"expr-voice-5-m"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("want Content-Type audio/wav, got %q", ct)
	}

	body := rec.Body.Bytes()
	if len(body) != 44+len(okResult().Samples)*2 {
		t.Fatalf("body length = %d; want %d", len(body), 44+len(okResult().Samples)*2)
	}
	if string(body[0:4]) != "RIFF" || string(body[8:12]) != "WAVE" {
		t.Error("response is not a RIFF/WAVE container")
	}
	if rate := binary.LittleEndian.Uint32(body[24:28]); rate != 24000 {
		t.Errorf("sample rate = %d; want 24000", rate)
	}
}

func TestTTS_PassesRequestThroughToSynthesizer(t *testing.T) {
	stub := &stubSynthesizer{res: okResult()}
	h := newTestHandler(stub, &stubVoiceLister{})

	rec := postTTS(h, `{"text":"Guten Tag.","voice":"expr-voice-2-f","speed":1.4,"language":"de"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	got := stub.lastRequest(t)
	if got.Text != "Guten Tag." || got.Voice != "expr-voice-2-f" || got.Speed != 1.4 || got.Language != "de" {
		t.Errorf("request = %+v", got)
	}
}

func TestTTS_FillsVoiceAndSpeedDefaults(t *testing.T) {
	stub := &stubSynthesizer{res: okResult()}
	h := server.NewHandler(stub, &stubVoiceLister{},
		server.WithVoiceDefaults("expr-voice-4-f", 0.8),
	)

	rec := postTTS(h, `{"text":"Hello."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	got := stub.lastRequest(t)
	if got.Voice != "expr-voice-4-f" {
		t.Errorf("voice = %q; want default expr-voice-4-f", got.Voice)
	}
	if got.Speed != 0.8 {
		t.Errorf("speed = %v; want default 0.8", got.Speed)
	}
}

func TestTTS_InvalidSpeedReturns400(t *testing.T) {
	stub := &stubSynthesizer{err: synth.ErrInvalidSpeed}
	h := newTestHandler(stub, &stubVoiceLister{})

	rec := postTTS(h, `{"text":"Hello.","voice":"expr-voice-5-m","speed":-2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestTTS_UnknownVoiceReturns400(t *testing.T) {
	stub := &stubSynthesizer{err: &voice.UnknownVoiceError{Voice: "nope", Available: []string{"expr-voice-5-m"}}}
	h := newTestHandler(stub, &stubVoiceLister{})

	rec := postTTS(h, `{"text":"Hello.","voice":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}

	var errBody map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] == "" {
		t.Error("want non-empty error field")
	}
}

func TestTTS_SynthesizerErrorReturns500(t *testing.T) {
	stub := &stubSynthesizer{err: errSynthFailed}
	h := newTestHandler(stub, &stubVoiceLister{})

	rec := postTTS(h, `{"text":"Hello.","voice":"expr-voice-5-m"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}

	var errBody map[string]string
	err := json.NewDecoder(rec.Body).Decode(&errBody)
	if err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	if errBody["error"] == "" {
		t.Error("want non-empty error field")
	}
}

var (
	errSynthFailed  = &synthError{"synthesis failed"}
	errVoicesBroken = &synthError{"voice archive corrupt"}
)

type synthError struct{ msg string }

func (e *synthError) Error() string { return e.msg }
