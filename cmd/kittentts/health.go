package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-kitten-tts/internal/server"
)

func newHealthCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running KittenTTS server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				cfg, err := requireConfig()
				if err != nil {
					return err
				}
				addr = cfg.Server.ListenAddr
			}
			if strings.HasPrefix(addr, ":") {
				addr = "localhost" + addr
			}

			if err := server.ProbeHTTP(addr); err != nil {
				return fmt.Errorf("health probe %s: %w", addr, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "server at %s is healthy\n", addr)

			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address to probe (default: configured listen address)")

	return cmd
}
