// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(app *App, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := app.migrator()
			if err != nil {
				return err
			}
			if err := migrator.Up(); err != nil {
				return err
			}
			return printStatus(cmd, migrator, opts)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := app.migrator()
			if err != nil {
				return err
			}
			if err := migrator.Down(steps); err != nil {
				return err
			}
			return printStatus(cmd, migrator, opts)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, err := app.migrator()
			if err != nil {
				return err
			}
			return printStatus(cmd, migrator, opts)
		},
	})

	return cmd
}

func printStatus(cmd *cobra.Command, migrator Migrator, opts *RootOptions) error {
	status, err := migrator.Status()
	if err != nil {
		return err
	}

	text := fmt.Sprintf("version %d", status.Version)
	switch {
	case status.Empty:
		text = "no migrations applied"
	case status.Dirty:
		text += " (dirty)"
	}
	return printResult(cmd.OutOrStdout(), opts, status, text)
}
