package main

import "github.com/spf13/cobra"

// NewRootCmd creates the root command of the cacart client.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cacart",
		Short: "cacart - a shop client",
		Long: `cacart talks to the shop backend: sign in, browse the catalog
and check credential input the way the sign-in forms do.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewShellCmd())

	return cmd
}
