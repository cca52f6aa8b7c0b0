package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/onnx"
)

func newModelVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check bundle integrity and run a smoke inference",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			info, err := onnx.DetectRuntime(cfg.Runtime)
			if err != nil {
				return err
			}

			err = model.Verify(model.VerifyOptions{
				Layout:        resolveLayout(cfg),
				ORTLibrary:    info.LibraryPath,
				ORTAPIVersion: cfg.Runtime.ORTAPIVersion,
				Stdout:        os.Stdout,
				Stderr:        os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("model verify failed: %w", err)
			}

			return nil
		},
	}

	return cmd
}
