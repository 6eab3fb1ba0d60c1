package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/cacart/internal/validator"
)

var errInvalidInput = errors.New("invalid input")

// NewValidateCmd creates the validate command and its field subcommands.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check credential input",
		Long: `Check an email, a password or a password confirmation with the
rules of the sign-in and sign-up forms. Exits non-zero when the input is invalid.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "email <email>",
		Short: "Check an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd, validator.ValidateEmail(args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "password <password>",
		Short: "Check password complexity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd, validator.ValidatePassword(args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "confirm <password> <confirmation>",
		Short: "Check that a confirmation matches the password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd, validator.ValidateConfirmPassword(args[0], args[1]))
		},
	})

	return cmd
}

func report(cmd *cobra.Command, r validator.Result) error {
	if r.Valid {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.Message)
	cmd.SilenceErrors = true
	return errInvalidInput
}
