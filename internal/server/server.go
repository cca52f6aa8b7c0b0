package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-kitten-tts/internal/audio"
	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/synth"
	"github.com/example/go-kitten-tts/internal/text"
	"github.com/example/go-kitten-tts/internal/voice"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Synthesizer produces a trimmed waveform for one request. *synth.Service
// satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request) (synth.Result, error)
}

// VoiceInfo is one entry of the /voices listing.
type VoiceInfo struct {
	Name        string `json:"name"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// VoiceLister returns the list of available voices.
type VoiceLister interface {
	ListVoices() ([]VoiceInfo, error)
}

// NewStoreVoices adapts a voice store into a VoiceLister, flagging entries
// that degraded to placeholders.
func NewStoreVoices(store *voice.Store) VoiceLister {
	return &storeVoices{store: store}
}

type storeVoices struct {
	store *voice.Store
}

func (s *storeVoices) ListVoices() ([]VoiceInfo, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, err
	}

	placeholders, err := s.store.Placeholders()
	if err != nil {
		return nil, err
	}

	degraded := make(map[string]bool, len(placeholders))
	for _, name := range placeholders {
		degraded[name] = true
	}

	infos := make([]VoiceInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, VoiceInfo{Name: name, Placeholder: degraded[name]})
	}

	return infos, nil
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	defaultVoice   string
	defaultSpeed   float64
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   4096,
		workers:        2,
		requestTimeout: 60 * time.Second,
		defaultVoice:   "expr-voice-5-m",
		defaultSpeed:   1.0,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /tts.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent synthesis calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request synthesis deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithVoiceDefaults sets the voice and speed substituted when a request
// omits them.
func WithVoiceDefaults(voice string, speed float64) Option {
	return func(o *options) {
		o.defaultVoice = voice
		o.defaultSpeed = speed
	}
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	synth  Synthesizer
	voices VoiceLister
	opts   options
	sem    chan struct{} // semaphore for worker pool
	log    *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /voices, and POST /tts.
func NewHandler(synth Synthesizer, voices VoiceLister, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		synth:  synth,
		voices: voices,
		opts:   opts,
		log:    opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/voices", h.handleVoices)
	mux.HandleFunc("/tts", h.handleTTS)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.voices.ListVoices()
	if err != nil {
		h.log.ErrorContext(r.Context(), "voice listing failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "voice archive unavailable: "+err.Error())
		return
	}
	if voices == nil {
		voices = []VoiceInfo{}
	}
	writeJSON(w, http.StatusOK, voices)
}

type ttsRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed"`
	Language string  `json:"language"`
}

func (h *handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	if req.Voice == "" {
		req.Voice = h.opts.defaultVoice
	}
	// A JSON body without a speed field decodes to 0, which is never a
	// legal speed, so 0 doubles as "not provided".
	if req.Speed == 0 {
		req.Speed = h.opts.defaultSpeed
	}

	// Acquire a worker slot, honouring context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	// Apply per-request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.synth.Synthesize(ctx, synth.Request{
		Text:     req.Text,
		Voice:    req.Voice,
		Speed:    req.Speed,
		Language: req.Language,
	})
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.writeSynthesisError(w, r, req, durationMS, err)
		return
	}

	wav, err := audio.EncodeWAV(res.Samples, res.SampleRate)
	if err != nil {
		h.log.ErrorContext(r.Context(), "wav encoding failed",
			slog.String("voice", req.Voice),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if res.VoiceSource == voice.SourcePlaceholder {
		h.log.WarnContext(r.Context(), "voice degraded to placeholder",
			slog.String("voice", res.Voice),
		)
	}

	h.log.InfoContext(r.Context(), "synthesis complete",
		slog.String("voice", res.Voice),
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", res.TokenCount),
		slog.Int64("duration_ms", durationMS),
		slog.Int("wav_bytes", len(wav)),
	)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

// writeSynthesisError maps pipeline failures onto HTTP statuses: invalid
// input is the client's fault, timeouts are 504, everything else is 500.
func (h *handler) writeSynthesisError(w http.ResponseWriter, r *http.Request, req ttsRequest, durationMS int64, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		h.log.WarnContext(r.Context(), "synthesis timed out",
			slog.String("voice", req.Voice),
			slog.Int("text_len", len(req.Text)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusGatewayTimeout, "synthesis timed out")
		return
	}

	var unknown *voice.UnknownVoiceError
	if errors.Is(err, synth.ErrInvalidSpeed) || errors.Is(err, text.ErrEmptyText) || errors.As(err, &unknown) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.ErrorContext(r.Context(), "synthesis failed",
		slog.String("voice", req.Voice),
		slog.Int("text_len", len(req.Text)),
		slog.Int64("duration_ms", durationMS),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server: wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	synth           Synthesizer
	voices          VoiceLister
	shutdownTimeout time.Duration
}

// New builds a server around an initialized synthesis service and voice
// lister. The caller owns both and keeps them alive for the server's
// lifetime.
func New(cfg config.Config, synth Synthesizer, voices VoiceLister) *Server {
	shutdown := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdown <= 0 {
		shutdown = 30 * time.Second
	}

	return &Server{
		cfg:             cfg,
		synth:           synth,
		voices:          voices,
		shutdownTimeout: shutdown,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if s.synth == nil {
		return errors.New("server: nil synthesizer")
	}
	if s.voices == nil {
		return errors.New("server: nil voice lister")
	}

	h := NewHandler(s.synth, s.voices,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithVoiceDefaults(s.cfg.TTS.Voice, s.cfg.TTS.Speed),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks a running server's /health endpoint.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
