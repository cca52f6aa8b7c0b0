package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/model"
)

func newModelDownloadCmd() *cobra.Command {
	var (
		hfRepo  string
		outDir  string
		hfToken string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the model bundle from Hugging Face",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = cfg.Paths.ModelDir
			}
			if hfToken == "" {
				hfToken = os.Getenv("HF_TOKEN")
			}

			err = model.Download(model.DownloadOptions{
				Repo:    hfRepo,
				OutDir:  outDir,
				HFToken: hfToken,
				Stdout:  os.Stdout,
				Stderr:  os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("model download failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&hfRepo, "hf-repo", model.DefaultRepo, "Hugging Face repository holding the bundle")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Target directory (default: configured model dir)")
	cmd.Flags().StringVar(&hfToken, "hf-token", "", "Hugging Face access token (falls back to HF_TOKEN)")

	return cmd
}
