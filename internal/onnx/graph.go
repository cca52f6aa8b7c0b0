package onnx

import "context"

// GraphRunner is the execution contract the synthesis pipeline depends on.
// The native Runner implements it; tests substitute in-memory fakes.
type GraphRunner interface {
	Run(ctx context.Context, inputs map[string]*Tensor) (map[string]*Tensor, error)
	Name() string
	Close()
}
