package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/edvise/core/tenant"
)

func (cli *commandLine) tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(cli.tenantAddCmd(), cli.tenantListCmd())
	return cmd
}

func (cli *commandLine) tenantAddCmd() *cobra.Command {
	var nt tenant.NewTenant

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := nt.Validate(cli.validate); err != nil {
				return err
			}
			t, err := cli.tenants(cli.db).Create(cmd.Context(), nt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tenant %s [%s]\n", t.Name, t.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&nt.Slug, "slug", "", "Tenant slug, also its subdomain")
	cmd.Flags().StringVar(&nt.Name, "name", "", "Brand name")
	cmd.Flags().StringVar(&nt.Domain, "domain", "", "Custom domain")
	cmd.Flags().StringVar(&nt.ContactEmail, "email", "", "Contact email, notified of new bookings")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (cli *commandLine) tenantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants (as JSON when not on a terminal)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants, err := cli.tenants(cli.db).Query(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !isTerminalFunc() {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tenants)
			}

			if len(tenants) == 0 {
				fmt.Fprintln(out, "No tenants found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tDOMAIN\tCONTACT\tACTIVE")
			for _, t := range tenants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", t.Slug, t.Name, t.Domain, t.ContactEmail, t.IsActive)
			}
			return w.Flush()
		},
	}
}
