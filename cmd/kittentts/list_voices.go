package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/model"
	"github.com/example/go-kitten-tts/internal/server"
	"github.com/example/go-kitten-tts/internal/voice"
)

func newListVoicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list-voices",
		Short: "List voices bundled in the model archive",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			layout := resolveLayout(cfg)
			if err := layout.Check(); err != nil {
				return err
			}

			desc, err := model.LoadDescriptor(layout.ConfigPath)
			if err != nil {
				return err
			}

			store := voice.NewStore(layout.VoicesPath, desc.StyleDim)

			return runListVoices(store, asJSON, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the voice list as JSON")

	return cmd
}

// runListVoices prints one voice per line, marking entries whose embedding
// degraded to a placeholder.
func runListVoices(store *voice.Store, asJSON bool, w io.Writer) error {
	infos, err := server.NewStoreVoices(store).ListVoices()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, v := range infos {
		if v.Placeholder {
			fmt.Fprintf(w, "%s (placeholder)\n", v.Name)
			continue
		}
		fmt.Fprintln(w, v.Name)
	}

	return nil
}
