// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/neuromem-dev/neuromem/internal/config"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the neuromem server",
		Long:  "Load configuration, open the note store, run the embedding calibration check, and start the HTTP server.",
		RunE:  runStart,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Apply any flag/env overrides that Viper resolved.
	if listen := viper.GetString("server.listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if dataDir := viper.GetString("data_dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	config.WarnInsecurePermissions(viper.ConfigFileUsed())

	app, err := WireApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Calibration check runs once, blocking, before the listener accepts.
	// Drift never blocks startup; only a hard failure (snapshot unreadable,
	// backend unreachable) does.
	report, err := app.Drift.Check(ctx)
	if err != nil {
		return nmerr.Wrap(err, nmerr.CodeCLISetupFailure, "startup calibration check")
	}
	if report.Degraded() {
		slog.Warn("embedding drift detected, search quality may be degraded",
			"min_similarity", report.MinSimilarity,
			"threshold", report.Threshold,
		)
	} else {
		slog.Info("calibration check passed", "status", report.Status)
	}

	if err := app.Notes.SyncGauges(ctx); err != nil {
		slog.Warn("failed to sync collection gauges", "error", err)
	}

	slog.Info("starting neuromem", "listen", cfg.Server.Listen)
	return app.Server.Start(ctx)
}
