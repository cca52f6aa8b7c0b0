package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/go-kitten-tts/internal/onnx"
)

// Tensor names fixed by the exported speech graph.
const (
	inputIDsName = "input_ids"
	styleName    = "style"
	speedName    = "speed"
	waveformName = "waveform"
)

// BuildInputs assembles the graph feed for one run: token ids as int64
// [1, N], the style vector as float32 [1, D] and the speed factor as a
// one-element float32 tensor.
func BuildInputs(tokens []int64, style []float32, speed float64) (map[string]*onnx.Tensor, error) {
	ids, err := onnx.NewTensor(tokens, []int64{1, int64(len(tokens))})
	if err != nil {
		return nil, fmt.Errorf("token tensor: %w", err)
	}

	styleTensor, err := onnx.NewTensor(style, []int64{1, int64(len(style))})
	if err != nil {
		return nil, fmt.Errorf("style tensor: %w", err)
	}

	speedTensor, err := onnx.NewTensor([]float32{float32(speed)}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("speed tensor: %w", err)
	}

	return map[string]*onnx.Tensor{
		inputIDsName: ids,
		styleName:    styleTensor,
		speedName:    speedTensor,
	}, nil
}

// SelectWaveform picks the audio tensor out of a graph's output set. The
// exported graph names its output "waveform"; graphs re-exported with a
// different name still work as long as they emit exactly one output.
func SelectWaveform(outputs map[string]*onnx.Tensor) ([]float32, error) {
	if t, ok := outputs[waveformName]; ok {
		return t.Float32s()
	}

	if len(outputs) == 1 {
		for _, t := range outputs {
			return t.Float32s()
		}
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("graph produced no outputs")
	}

	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	return nil, fmt.Errorf("no %q output among %d graph outputs (%s)", waveformName, len(outputs), strings.Join(names, ", "))
}
