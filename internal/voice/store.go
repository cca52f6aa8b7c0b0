// Package voice resolves named speaker embeddings from the model's packaged
// archive.
//
// The archive is loaded once, on first use, and is immutable afterwards:
// concurrent cold-start callers share a single load and every later read is
// lock-free. A malformed archive entry degrades to a deterministic zero
// placeholder instead of failing the process; the caller decides how loudly
// to surface that.
package voice

import (
	"fmt"
	"strings"
	"sync"

	"github.com/example/go-kitten-tts/internal/npz"
)

// DefaultDim is the embedding length of the nano model, used when the model
// descriptor does not override it.
const DefaultDim = 256

// Source tags how an embedding was obtained.
type Source int

const (
	// SourceArchive marks an embedding decoded from the voice archive.
	SourceArchive Source = iota
	// SourcePlaceholder marks the zero vector substituted for a malformed
	// archive entry.
	SourcePlaceholder
)

func (s Source) String() string {
	if s == SourcePlaceholder {
		return "placeholder"
	}

	return "archive"
}

// Embedding is a fixed-length speaker vector. Data is shared, read-only
// store state; callers must not mutate it.
type Embedding struct {
	Voice  string
	Source Source
	Data   []float32
}

// UnknownVoiceError reports a voice name absent from the archive dictionary,
// even as a placeholder key.
type UnknownVoiceError struct {
	Voice     string
	Available []string
}

func (e *UnknownVoiceError) Error() string {
	return fmt.Sprintf("unknown voice %q (available: %s)", e.Voice, strings.Join(e.Available, ", "))
}

// Store maps voice names to embeddings backed by an .npz archive on disk.
type Store struct {
	path string
	dim  int

	once    sync.Once
	loadErr error

	embeddings map[string]Embedding
	names      []string
}

// NewStore prepares a store over the archive at path without touching disk.
// dim is the embedding length the model expects; values <= 0 fall back to
// DefaultDim.
func NewStore(path string, dim int) *Store {
	if dim <= 0 {
		dim = DefaultDim
	}

	return &Store{path: path, dim: dim}
}

// Dim returns the embedding length every resolved vector has.
func (s *Store) Dim() int { return s.dim }

// Resolve returns the embedding for name. The archive's own entry names are
// the dictionary: a present-but-malformed entry resolves to a placeholder,
// an absent name is an *UnknownVoiceError.
func (s *Store) Resolve(name string) (Embedding, error) {
	if err := s.ensure(); err != nil {
		return Embedding{}, err
	}

	e, ok := s.embeddings[name]
	if !ok {
		return Embedding{}, &UnknownVoiceError{Voice: name, Available: s.names}
	}

	return e, nil
}

// List returns all voice names in sorted order.
func (s *Store) List() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}

	return append([]string(nil), s.names...), nil
}

// Placeholders returns the names whose entries were malformed and degraded
// to placeholder vectors, for diagnostics.
func (s *Store) Placeholders() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}

	var out []string
	for _, name := range s.names {
		if s.embeddings[name].Source == SourcePlaceholder {
			out = append(out, name)
		}
	}

	return out, nil
}

func (s *Store) ensure() error {
	s.once.Do(s.load)
	return s.loadErr
}

func (s *Store) load() {
	archive, err := npz.Open(s.path)
	if err != nil {
		s.loadErr = fmt.Errorf("load voice archive: %w", err)
		return
	}

	names := archive.Names()
	if len(names) == 0 {
		s.loadErr = fmt.Errorf("voice archive %s contains no entries", s.path)
		return
	}

	s.names = names
	s.embeddings = make(map[string]Embedding, len(names))

	for _, name := range names {
		s.embeddings[name] = s.decode(archive, name)
	}
}

// decode classifies one archive entry. Malformed means: the entry does not
// parse as an npy array, its dtype is not little-endian float, or its shape
// is neither [dim] nor [1, dim]. All of those degrade to a placeholder.
func (s *Store) decode(archive *npz.Archive, name string) Embedding {
	arr, err := archive.Array(name)
	if err != nil {
		return s.placeholder(name)
	}

	if !shapeMatches(arr.Shape, s.dim) || len(arr.Data) != s.dim {
		return s.placeholder(name)
	}

	return Embedding{Voice: name, Source: SourceArchive, Data: arr.Data}
}

func (s *Store) placeholder(name string) Embedding {
	return Embedding{
		Voice:  name,
		Source: SourcePlaceholder,
		Data:   make([]float32, s.dim),
	}
}

func shapeMatches(shape []int64, dim int) bool {
	switch len(shape) {
	case 1:
		return shape[0] == int64(dim)
	case 2:
		return shape[0] == 1 && shape[1] == int64(dim)
	default:
		return false
	}
}
