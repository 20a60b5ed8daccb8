// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Neuromem Contributors

package main

import (
	"fmt"

	"github.com/neuromem-dev/neuromem/internal/secrets"
	nmerr "github.com/neuromem-dev/neuromem/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// serviceName is the keyring service name under which neuromem stores secrets.
const serviceName = "neuromem"

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets stored in the OS keyring",
		Long:  "Store, list, and delete secrets kept under the neuromem service in the operating system keyring. Config values can then reference them as keyring://neuromem/<name>.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretListCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret, reading its value from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretSet,
	}
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored secret names",
		RunE:  runSecretList,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Value for %s: ", name); err != nil {
		return err
	}
	value, err := readSecretValue(cmd)
	if err != nil {
		return nmerr.Wrap(err, nmerr.CodeCLIInputInvalid, "reading secret value")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout()); err != nil {
		return err
	}
	if len(value) == 0 {
		return nmerr.New(nmerr.CodeCLIInputInvalid, "secret value must not be empty")
	}

	store := secretStoreFactory()
	if err := store.Store(serviceName, name, string(value)); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret: %s (reference it as keyring://%s/%s)\n",
		name, serviceName, name)
	return err
}

// readSecretValue reads the secret without echo when stdin is a terminal,
// falling back to a plain line read for pipes and tests.
func readSecretValue(cmd *cobra.Command) ([]byte, error) {
	type fder interface{ Fd() uintptr }
	if f, ok := cmd.InOrStdin().(fder); ok && term.IsTerminal(int(f.Fd())) {
		return term.ReadPassword(int(f.Fd()))
	}

	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func runSecretList(cmd *cobra.Command, _ []string) error {
	store := secretStoreFactory()
	keys, err := store.List(serviceName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		_, err = fmt.Fprintln(out, "No secrets stored.")
		return err
	}

	for _, k := range keys {
		if _, err := fmt.Fprintln(out, k); err != nil {
			return err
		}
	}
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(serviceName, name); err != nil {
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return err
}
