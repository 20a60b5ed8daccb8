// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/neuromem-dev/neuromem/internal/store/sqlite"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check binary health, configuration, the note database, the calibration snapshot, and disk space.",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	dataDir := resolveDataDir()

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Config", checkConfig},
		{"Database", func() string { return checkDatabase(dataDir) }},
		{"Calibration", func() string { return checkCalibration(cmd.Context(), dataDir) }},
		{"Disk Space", func() string { return checkDiskSpace(dataDir) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

// resolveDataDir returns the data directory from viper or the default.
func resolveDataDir() string {
	if dataDir := viper.GetString("data_dir"); dataDir != "" {
		return dataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "neuromem")
}

func checkBinary() string {
	return fmt.Sprintf("neuromem %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig() string {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func checkDatabase(dataDir string) string {
	dbPath := filepath.Join(dataDir, dbFileName)
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("not created yet at %s (run 'neuromem start')", dbPath)
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s (%s)", dbPath, formatBytes(uint64(info.Size())))
}

// checkCalibration reads the snapshot straight from the store. Comparing
// against live embeddings needs an API key, so doctor only reports snapshot
// presence and age; 'neuromem start' runs the full check.
func checkCalibration(ctx context.Context, dataDir string) string {
	dbPath := filepath.Join(dataDir, dbFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "no snapshot yet (captured on first start)"
	}

	calStore, err := sqlite.NewCalibrationStore(dbPath)
	if err != nil {
		return fmt.Sprintf("unable to open store: %s", err)
	}
	defer func() { _ = calStore.Close() }()

	records, err := calStore.LoadAll(ctx)
	if err != nil {
		return fmt.Sprintf("unable to read snapshot: %s", err)
	}
	if len(records) == 0 {
		return "no snapshot yet (captured on first start)"
	}
	return fmt.Sprintf("snapshot of %d phrases, captured %s",
		len(records), records[0].CapturedAt.Format(time.RFC3339))
}

func checkDiskSpace(dataDir string) string {
	path := dataDir
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Fall back to home directory if data dir doesn't exist yet.
		path, _ = os.UserHomeDir()
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
