package phoneme

import (
	"context"
	"strings"
	"testing"
)

func TestRuleEnginePhonemizeRaw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "dictionary word",
			input: "hello",
			want:  "hɛloʊ",
		},
		{
			name:  "dictionary is case-insensitive",
			input: "Hello",
			want:  "hɛloʊ",
		},
		{
			name:  "spelling rules for out-of-dictionary word",
			input: "world",
			want:  "wɔɹld",
		},
		{
			name:  "words separated by a space",
			input: "hello world",
			want:  "hɛloʊ wɔɹld",
		},
		{
			name:  "punctuation attaches to the preceding word",
			input: "hello, world!",
			want:  "hɛloʊ, wɔɹld!",
		},
		{
			name:  "longest match wins",
			input: "nation",
			want:  "næʃən",
		},
		{
			name:  "silent gh",
			input: "night",
			want:  "naɪt",
		},
		{
			name:  "digraph consonants",
			input: "ship check",
			want:  "ʃɪp tʃɛk",
		},
	}

	engine := NewRuleEngine()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.PhonemizeRaw(context.Background(), tt.input, "en-us")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("PhonemizeRaw(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRuleEngineRejectsNonEnglish(t *testing.T) {
	engine := NewRuleEngine()

	_, err := engine.PhonemizeRaw(context.Background(), "bonjour", "fr")
	if err == nil {
		t.Fatal("expected error for non-English language")
	}
}

func TestRuleEngineAcceptsEnglishVariants(t *testing.T) {
	engine := NewRuleEngine()

	for _, lang := range []string{"", "en", "en-us", "en-gb"} {
		if _, err := engine.PhonemizeRaw(context.Background(), "hello", lang); err != nil {
			t.Errorf("language %q rejected: %v", lang, err)
		}
	}
}

func TestRuleEngineOutputUsesIPA(t *testing.T) {
	engine := NewRuleEngine()

	got, err := engine.PhonemizeRaw(context.Background(), "the quick brown fox", "en-us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got == "" {
		t.Fatal("empty phonemization")
	}

	// Dictionary entry for "the" must survive into the output.
	if !strings.HasPrefix(got, "ðə") {
		t.Errorf("expected dictionary pronunciation for \"the\", got %q", got)
	}
}

func TestRuleEngineThroughAdapter(t *testing.T) {
	adapter := NewAdapter(NewRuleEngine())

	seq, err := adapter.Phonemize(context.Background(), "Hello, world!", "en-us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seq.Symbols) == 0 {
		t.Fatal("empty sequence for non-empty input")
	}

	if last := seq.Symbols[len(seq.Symbols)-1]; last != "!" {
		t.Errorf("last symbol = %q, want sentence terminator %q", last, "!")
	}
}
