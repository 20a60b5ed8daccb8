// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"fmt"

	"github.com/neuromem-dev/neuromem/internal/config"
	"github.com/spf13/cobra"
)

func newReembedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reembed",
		Short: "Re-embed all stored notes with the current backend",
		Long:  "Recompute the fingerprint of every stored note. Notes that fail to embed keep their old fingerprint and are reported at the end.",
		RunE:  runReembed,
	}
}

func runReembed(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	app, err := WireApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	count, err := app.Notes.ReembedAll(cmd.Context())
	if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "Re-embedded %d note(s)\n", count); werr != nil {
		return werr
	}
	return err
}
