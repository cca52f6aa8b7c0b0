package voice

import (
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/example/go-kitten-tts/internal/testutil"
)

func writeFixtureArchive(t *testing.T, arrays []testutil.NPYArray) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "voices.npz")
	testutil.WriteNPZ(t, path, arrays)

	return path
}

func embeddingData(dim int, fill float32) []float32 {
	data := make([]float32, dim)
	for i := range data {
		data[i] = fill
	}

	return data
}

func TestResolveArchiveEntry(t *testing.T) {
	const dim = 8

	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "expr-voice-5-m", Shape: []int64{dim}, Data: embeddingData(dim, 0.25)},
	})

	store := NewStore(path, dim)

	emb, err := store.Resolve("expr-voice-5-m")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if emb.Source != SourceArchive {
		t.Errorf("source = %v, want archive", emb.Source)
	}

	if len(emb.Data) != dim {
		t.Errorf("len(Data) = %d, want %d", len(emb.Data), dim)
	}

	if emb.Data[0] != 0.25 {
		t.Errorf("Data[0] = %v, want 0.25", emb.Data[0])
	}
}

func TestResolveAcceptsRowVectorShape(t *testing.T) {
	const dim = 4

	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "row", Shape: []int64{1, dim}, Data: embeddingData(dim, 1)},
	})

	emb, err := NewStore(path, dim).Resolve("row")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if emb.Source != SourceArchive {
		t.Errorf("source = %v, want archive", emb.Source)
	}
}

func TestResolveUnknownVoice(t *testing.T) {
	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "only-voice", Shape: []int64{2}, Data: []float32{1, 2}},
	})

	store := NewStore(path, 2)

	_, err := store.Resolve("nonexistent-voice")
	if err == nil {
		t.Fatal("expected error for unknown voice")
	}

	var uerr *UnknownVoiceError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnknownVoiceError, got %T", err)
	}

	if uerr.Voice != "nonexistent-voice" {
		t.Errorf("error voice = %q", uerr.Voice)
	}

	if !reflect.DeepEqual(uerr.Available, []string{"only-voice"}) {
		t.Errorf("available = %v", uerr.Available)
	}
}

func TestResolveMalformedEntriesDegradeToPlaceholder(t *testing.T) {
	const dim = 4

	tests := []struct {
		name  string
		entry testutil.NPYArray
	}{
		{
			name:  "npy parse failure",
			entry: testutil.NPYArray{Name: "broken", Raw: []byte("definitely not npy data")},
		},
		{
			name:  "unsupported dtype",
			entry: testutil.NPYArray{Name: "broken", Descr: "<i4", Shape: []int64{dim}, Data: embeddingData(dim, 1)},
		},
		{
			name:  "dimensionality mismatch",
			entry: testutil.NPYArray{Name: "broken", Shape: []int64{dim * 2}, Data: embeddingData(dim*2, 1)},
		},
		{
			name:  "matrix shape rejected",
			entry: testutil.NPYArray{Name: "broken", Shape: []int64{2, 2}, Data: embeddingData(dim, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixtureArchive(t, []testutil.NPYArray{tt.entry})
			store := NewStore(path, dim)

			emb, err := store.Resolve("broken")
			if err != nil {
				t.Fatalf("malformed entry must not fail Resolve: %v", err)
			}

			if emb.Source != SourcePlaceholder {
				t.Errorf("source = %v, want placeholder", emb.Source)
			}

			if len(emb.Data) != dim {
				t.Errorf("placeholder length = %d, want %d", len(emb.Data), dim)
			}

			for i, v := range emb.Data {
				if v != 0 {
					t.Errorf("placeholder[%d] = %v, want 0", i, v)
					break
				}
			}
		})
	}
}

func TestPlaceholderResolutionIsDeterministic(t *testing.T) {
	const dim = 4

	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "broken", Raw: []byte("junk")},
	})

	store := NewStore(path, dim)

	first, err := store.Resolve("broken")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	second, err := store.Resolve("broken")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("placeholder resolution differs across calls")
	}
}

func TestListSortedNames(t *testing.T) {
	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "zeta", Shape: []int64{1}, Data: []float32{1}},
		{Name: "alpha", Shape: []int64{1}, Data: []float32{1}},
		{Name: "mid", Shape: []int64{1}, Data: []float32{1}},
	})

	names, err := NewStore(path, 1).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestPlaceholders(t *testing.T) {
	const dim = 2

	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "good", Shape: []int64{dim}, Data: embeddingData(dim, 1)},
		{Name: "bad", Raw: []byte("junk")},
	})

	store := NewStore(path, dim)

	degraded, err := store.Placeholders()
	if err != nil {
		t.Fatalf("Placeholders: %v", err)
	}

	if !reflect.DeepEqual(degraded, []string{"bad"}) {
		t.Errorf("Placeholders() = %v, want [bad]", degraded)
	}
}

func TestEmptyArchiveIsLoadError(t *testing.T) {
	path := writeFixtureArchive(t, nil)

	store := NewStore(path, 4)

	if _, err := store.Resolve("anything"); err == nil {
		t.Fatal("expected load error for empty archive")
	}

	// The load error must be stable across calls.
	if _, err := store.List(); err == nil {
		t.Fatal("expected load error from List as well")
	}
}

func TestMissingArchiveIsLoadError(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.npz"), 4)

	if _, err := store.List(); err == nil {
		t.Fatal("expected load error for missing archive")
	}
}

func TestConcurrentColdStartLoadsOnce(t *testing.T) {
	const dim = 4

	path := writeFixtureArchive(t, []testutil.NPYArray{
		{Name: "voice", Shape: []int64{dim}, Data: embeddingData(dim, 0.5)},
	})

	store := NewStore(path, dim)

	var wg sync.WaitGroup
	results := make([]Embedding, 16)
	errs := make([]error, 16)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.Resolve("voice")
		}(i)
	}

	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}

		if !reflect.DeepEqual(results[i], results[0]) {
			t.Errorf("goroutine %d observed a different embedding", i)
		}
	}
}

func TestNewStoreDefaultDim(t *testing.T) {
	store := NewStore("whatever.npz", 0)
	if store.Dim() != DefaultDim {
		t.Errorf("Dim() = %d, want %d", store.Dim(), DefaultDim)
	}

	store = NewStore("whatever.npz", 16)
	if store.Dim() != 16 {
		t.Errorf("Dim() = %d, want 16", store.Dim())
	}
}
