// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// NewTokenCommand creates the token command. Requires JWT_PRIVATE_KEY_PATH.
func NewTokenCommand(app *App, opts *RootOptions) *cobra.Command {
	var (
		userID   int64
		roleName string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role := sec.UserRole(roleName)
			if !role.IsValid() {
				return fmt.Errorf("invalid role %q: must be author or reader", roleName)
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive user id")
			}

			issuer, err := app.issuer()
			if err != nil {
				return err
			}

			token, err := issuer.GenerateAccessToken(userID, role, ttl)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), opts, map[string]any{
				"token":     token,
				"userId":    userID,
				"role":      role,
				"expiresIn": ttl.String(),
			}, token)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id placed in the token")
	cmd.Flags().StringVar(&roleName, "role", string(sec.RoleReader), "author or reader")
	cmd.Flags().DurationVar(&ttl, "ttl", constants.DevTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
