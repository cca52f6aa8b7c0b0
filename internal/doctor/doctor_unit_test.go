package doctor

import "testing"

func TestVoiceSummary(t *testing.T) {
	tests := []struct {
		name         string
		names        []string
		placeholders []string
		want         string
	}{
		{"all healthy", []string{"a", "b", "c"}, nil, "3 voices"},
		{"one degraded", []string{"a", "b"}, []string{"b"}, "2 voices, 1 degraded to placeholder"},
		{"all degraded", []string{"a"}, []string{"a"}, "1 voices, 1 degraded to placeholder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := voiceSummary(tt.names, tt.placeholders); got != tt.want {
				t.Fatalf("voiceSummary = %q; want %q", got, tt.want)
			}
		})
	}
}
