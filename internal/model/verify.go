package model

import (
	"context"
	"fmt"
	"io"

	"github.com/example/go-kitten-tts/internal/npz"
	"github.com/example/go-kitten-tts/internal/onnx"
)

type VerifyOptions struct {
	Layout        Layout
	StyleDim      int
	ORTLibrary    string
	ORTAPIVersion uint32
	Stdout        io.Writer
	Stderr        io.Writer
}

var runNativeVerify = runNativeVerifyImpl

// Verify checks the model bundle end to end: asset presence, voice archive
// integrity and a zero-input smoke inference through the native runtime.
func Verify(opts VerifyOptions) error {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	if err := opts.Layout.Check(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(opts.Stdout, "PASS layout (%s)\n", opts.Layout.Dir)

	desc, err := LoadDescriptor(opts.Layout.ConfigPath)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(opts.Stdout, "PASS model config (%s)\n", opts.Layout.ConfigPath)

	// Unset StyleDim follows the bundle's own descriptor.
	if opts.StyleDim <= 0 {
		opts.StyleDim = desc.StyleDim
	}

	if err := verifyVoices(opts); err != nil {
		return err
	}

	if err := runNativeVerify(opts); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "FAIL speech graph: %v\n", err)
		return fmt.Errorf("verify failed for speech graph: %w", err)
	}
	_, _ = fmt.Fprintf(opts.Stdout, "PASS speech graph (%s)\n", opts.Layout.ModelPath)

	return nil
}

// verifyVoices opens the archive and decodes every entry, reporting the ones
// that would degrade to a placeholder embedding at synthesis time.
func verifyVoices(opts VerifyOptions) error {
	archive, err := npz.Open(opts.Layout.VoicesPath)
	if err != nil {
		return fmt.Errorf("verify voice archive: %w", err)
	}

	names := archive.Names()
	if len(names) == 0 {
		return fmt.Errorf("voice archive %s contains no entries", opts.Layout.VoicesPath)
	}

	var degraded int
	for _, name := range names {
		arr, err := archive.Array(name)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "WARN voice %q unreadable: %v\n", name, err)
			degraded++
			continue
		}
		if len(arr.Data) != opts.StyleDim {
			_, _ = fmt.Fprintf(opts.Stderr, "WARN voice %q has %d values, want %d\n", name, len(arr.Data), opts.StyleDim)
			degraded++
		}
	}

	if degraded > 0 {
		_, _ = fmt.Fprintf(opts.Stdout, "PASS voice archive (%d voices, %d degraded to placeholder)\n", len(names), degraded)
	} else {
		_, _ = fmt.Fprintf(opts.Stdout, "PASS voice archive (%d voices)\n", len(names))
	}

	return nil
}

func runNativeVerifyImpl(opts VerifyOptions) error {
	runner, err := onnx.NewRunner("speech", opts.Layout.ModelPath, onnx.RunnerConfig{
		LibraryPath: opts.ORTLibrary,
		APIVersion:  opts.ORTAPIVersion,
	})
	if err != nil {
		return err
	}
	defer runner.Close()

	// Boundary ids alone form a legal, minimal token sequence.
	ids, err := onnx.NewTensor(make([]int64, 8), []int64{1, 8})
	if err != nil {
		return fmt.Errorf("build input_ids tensor: %w", err)
	}

	style, err := onnx.NewTensor(make([]float32, opts.StyleDim), []int64{1, int64(opts.StyleDim)})
	if err != nil {
		return fmt.Errorf("build style tensor: %w", err)
	}

	speed, err := onnx.NewTensor([]float32{1.0}, []int64{1})
	if err != nil {
		return fmt.Errorf("build speed tensor: %w", err)
	}

	outputs, err := runner.Run(context.Background(), map[string]*onnx.Tensor{
		"input_ids": ids,
		"style":     style,
		"speed":     speed,
	})
	if err != nil {
		return fmt.Errorf("run inference: %w", err)
	}

	if len(outputs) == 0 {
		return fmt.Errorf("smoke run produced no outputs")
	}

	return nil
}
