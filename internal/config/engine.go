package config

import (
	"fmt"
	"strings"
)

const (
	EngineAuto   = "auto"
	EngineRule   = "rule"
	EngineEspeak = "espeak"
)

// NormalizeEngine validates a phonemizer engine name. An empty value selects
// auto detection (espeak-ng when installed, rule-based fallback otherwise).
func NormalizeEngine(raw string) (string, error) {
	engine := strings.ToLower(strings.TrimSpace(raw))
	if engine == "" {
		engine = EngineAuto
	}
	switch engine {
	case EngineAuto, EngineRule, EngineEspeak:
		return engine, nil
	case "espeak-ng":
		return EngineEspeak, nil
	default:
		return "", fmt.Errorf(
			"invalid phonemizer engine %q (expected %s|%s|%s)",
			raw,
			EngineAuto,
			EngineRule,
			EngineEspeak,
		)
	}
}
