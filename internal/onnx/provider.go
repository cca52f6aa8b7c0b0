package onnx

import (
	"fmt"
	"strings"
)

// Provider names an ONNX Runtime execution provider.
type Provider string

const (
	ProviderCPU      Provider = "cpu"
	ProviderCUDA     Provider = "cuda"
	ProviderCoreML   Provider = "coreml"
	ProviderDirectML Provider = "directml"
	ProviderTensorRT Provider = "tensorrt"
	ProviderROCm     Provider = "rocm"
	ProviderOpenVINO Provider = "openvino"
	ProviderOneDNN   Provider = "onednn"
	ProviderWebGPU   Provider = "webgpu"
)

// ParseProvider validates an execution provider name. Empty input selects CPU.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return ProviderCPU, nil
	}
	switch p {
	case ProviderCPU, ProviderCUDA, ProviderCoreML, ProviderDirectML,
		ProviderTensorRT, ProviderROCm, ProviderOpenVINO, ProviderOneDNN, ProviderWebGPU:
		return p, nil
	default:
		return "", fmt.Errorf(
			"unknown execution provider %q (expected cpu|cuda|coreml|directml|tensorrt|rocm|openvino|onednn|webgpu)",
			raw,
		)
	}
}

// Supported reports whether sessions can be created with this provider.
// Only the default CPU provider is wired through the runtime bindings.
func (p Provider) Supported() bool {
	return p == ProviderCPU
}

// Effective resolves the provider a session will actually run with.
// Unsupported providers fall back to CPU; callers compare against the
// requested value to surface the downgrade.
func (p Provider) Effective() Provider {
	if p.Supported() {
		return p
	}

	return ProviderCPU
}

func (p Provider) String() string {
	return string(p)
}
