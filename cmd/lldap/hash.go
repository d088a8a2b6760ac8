package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/lldap/internal/backend"
)

func newHashCmd() *cobra.Command {
	var scheme string

	cmd := &cobra.Command{
		Use:   "hash <password>",
		Short: "Print a stored password value for config and users files",
		Long: "Hash a password with one of SHA256, SSHA256, SHA512, SSHA512, " +
			"ARGON2, BCRYPT or CLEARTEXT and print the value to store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := backend.HashPassword(args[0], scheme)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stored)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scheme, "scheme", "s", "SSHA256", "password scheme")
	return cmd
}
