// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/inkwell/internal/core/entitlement"
	"github.com/taibuivan/inkwell/internal/core/library"
)

// NewGrantCommand creates the grant command.
func NewGrantCommand(app *App, opts *RootOptions) *cobra.Command {
	var (
		userID   int64
		kindName string
		targetID int64
	)

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Record a purchase of a book, series or exploration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.storage(ctx); err != nil {
				return err
			}

			service := library.NewService(app.Purchases, app.Nodes, app.Logger)
			purchase, err := service.Grant(ctx, userID, entitlement.Target{Kind: kind, ID: targetID})
			if err != nil {
				return err
			}

			text := fmt.Sprintf("purchase %d: user %d owns %s %d", purchase.ID, userID, kind, targetID)
			return printResult(cmd.OutOrStdout(), opts, purchase, text)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "purchasing user id")
	cmd.Flags().StringVar(&kindName, "kind", "", "book, series or exploration")
	cmd.Flags().Int64Var(&targetID, "id", 0, "id of the purchased node")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
