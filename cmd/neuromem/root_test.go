// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Help(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"--help"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "neuromem")
	assert.Contains(t, buf.String(), "start")
	assert.Contains(t, buf.String(), "doctor")
	assert.Contains(t, buf.String(), "recalibrate")
	assert.Contains(t, buf.String(), "reembed")
	assert.Contains(t, buf.String(), "version")
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"version"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "neuromem")
}

func TestStartCommand_RequiresConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"start", "--config", "/nonexistent/path.yaml"})

	err := root.Execute()
	assert.Error(t, err)
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"--verbose", "--help"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "--config")
	assert.Contains(t, buf.String(), "--data-dir")
	assert.Contains(t, buf.String(), "--verbose")
}

func TestDoctorCommand_RunsAllChecks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"doctor"})

	err := root.Execute()
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Binary:")
	assert.Contains(t, out, "Platform:")
	assert.Contains(t, out, "Config:")
	assert.Contains(t, out, "Database:")
	assert.Contains(t, out, "Calibration:")
	assert.Contains(t, out, "no snapshot yet")
	assert.Contains(t, out, "Disk Space:")
}
