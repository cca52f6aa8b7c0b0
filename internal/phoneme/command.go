package phoneme

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommandBinary is the espeak-ng executable probed when no explicit
// binary is configured.
const DefaultCommandBinary = "espeak-ng"

// CommandEngine shells out to an espeak-ng compatible binary for
// phonemization. Output arrives in espeak's IPA notation, which the adapter
// re-encodes into the canonical alphabet.
type CommandEngine struct {
	binary string
}

func NewCommandEngine(binary string) *CommandEngine {
	if binary == "" {
		binary = DefaultCommandBinary
	}

	return &CommandEngine{binary: binary}
}

func (e *CommandEngine) Name() string { return "espeak" }

// Available reports whether the configured binary can be found in PATH.
func (e *CommandEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

func (e *CommandEngine) PhonemizeRaw(ctx context.Context, text, language string) (string, error) {
	if language == "" {
		language = "en-us"
	}

	// Text goes through stdin so long inputs never hit argv limits.
	cmd := exec.CommandContext(ctx, e.binary, "--ipa", "-q", "-v", language, "--stdin")
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("run %s: %w: %s", e.binary, err, msg)
		}

		return "", fmt.Errorf("run %s: %w", e.binary, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
