// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"fmt"

	"github.com/neuromem-dev/neuromem/internal/config"
	"github.com/spf13/cobra"
)

func newRecalibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalibrate",
		Short: "Capture a fresh embedding calibration snapshot",
		Long:  "Embed the calibration phrases with the current backend and atomically replace the stored snapshot. Run this after an intentional embedding model change, together with 'neuromem reembed'.",
		RunE:  runRecalibrate,
	}
}

func runRecalibrate(cmd *cobra.Command, _ []string) error {
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

	report, err := app.Drift.Recalibrate(cmd.Context())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Calibration snapshot replaced (%d phrases, status: %s)\n",
		len(report.Phrases), report.Status)
	return err
}
