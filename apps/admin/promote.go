package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/user"
	boiledrepos "github.com/trezcool/edvise/storage/database/sqlboiler"
)

var errUnknownRole = errors.New("unknown role")

func (cli *commandLine) promoteCmd() *cobra.Command {
	var slug, userID, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set a user's role, bypassing the back-office hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user.RolePriority(role) == 0 {
				return errors.Wrapf(errUnknownRole, "%q, use one of %v", role, user.AllRoles)
			}

			ctx := cmd.Context()
			t, err := cli.tenantBySlug(ctx, slug)
			if err != nil {
				return err
			}

			repo := boiledrepos.NewUserRepository(cli.db)
			usr, err := repo.GetUser(ctx, t.ID, userID)
			if err != nil {
				return err
			}
			usr.Roles = []string{role}
			usr.UpdatedAt = core.NowFunc()
			if _, err = repo.UpdateUser(ctx, usr); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", usr.Name, usr.Email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "tenant", "", "Tenant slug")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (the identity provider's subject)")
	cmd.Flags().StringVar(&role, "role", "", "Role to grant, e.g. admin:manager")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
