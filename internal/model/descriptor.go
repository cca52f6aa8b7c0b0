package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Known values for the nano model, used when config.json omits a field.
// The upstream file is a training config; the pipeline only needs these two.
const (
	DefaultSampleRate = 24000
	DefaultStyleDim   = 256
)

// Descriptor carries the model metadata the pipeline reads from config.json.
type Descriptor struct {
	SampleRate int
	StyleDim   int
}

// DefaultDescriptor returns the nano model's known parameters.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		SampleRate: DefaultSampleRate,
		StyleDim:   DefaultStyleDim,
	}
}

// LoadDescriptor reads config.json. Absent fields fall back to the nano
// model defaults; an unreadable or non-JSON file is an error since it means
// the bundle is incomplete or corrupt.
func LoadDescriptor(path string) (Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read model config: %w", err)
	}

	var fields struct {
		SampleRate int `json:"sample_rate"`
		StyleDim   int `json:"style_dim"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Descriptor{}, fmt.Errorf("parse model config %s: %w", path, err)
	}

	d := Descriptor{
		SampleRate: fields.SampleRate,
		StyleDim:   fields.StyleDim,
	}
	if d.SampleRate <= 0 {
		d.SampleRate = DefaultSampleRate
	}
	if d.StyleDim <= 0 {
		d.StyleDim = DefaultStyleDim
	}

	return d, nil
}
