// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/inkwell/internal/core/cascade"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// ImportResult summarises one imported tree.
type ImportResult struct {
	Kind    node.Kind     `json:"kind"`
	ID      int64         `json:"id"`
	Created bool          `json:"created"`
	Written []cascade.Ref `json:"written"`
}

// NewImportCommand creates the import command.
func NewImportCommand(app *App, opts *RootOptions) *cobra.Command {
	var (
		kindName   string
		authorID   int64
		sequential bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Upsert a nested content tree from a JSON document",
		Long: `Import reads one nested document and writes it through the same cascade
the API uses. Nodes with an id are updated, nodes without one are created.
Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindName)
			if err != nil {
				return err
			}
			if authorID <= 0 {
				return fmt.Errorf("--author must be a positive user id")
			}

			reader, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			input, err := node.DecodeInput(kind, reader)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.storage(ctx); err != nil {
				return err
			}

			mode := cascade.ModeTransactional
			if sequential || !app.transactional() {
				mode = cascade.ModeSequential
			}

			coordinator := cascade.NewCoordinator(app.Nodes, mode, app.Logger)
			result, err := coordinator.Upsert(ctx, sec.NewViewer(authorID, sec.RoleAuthor), input)
			if err != nil {
				return err
			}

			summary := ImportResult{Kind: kind, ID: result.Root.ID, Created: result.Created(), Written: result.Written}
			text := fmt.Sprintf("%s %d: %d node(s) written", kind, result.Root.ID, len(result.Written))
			return printResult(cmd.OutOrStdout(), opts, summary, text)
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "", "kind of the top-level node (e.g. series, Book)")
	cmd.Flags().Int64Var(&authorID, "author", 0, "user id that authors the tree")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "write without a surrounding transaction")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, func() { _ = file.Close() }, nil
}
