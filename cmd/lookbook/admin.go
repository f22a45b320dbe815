package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	internalauth "lookbook/internal/auth"
)

func newAdminCmd(jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
	}
	cmd.AddCommand(newAdminHashPasswordCmd(os.Stdin, jsonOutput))
	return cmd
}

// newAdminHashPasswordCmd prints a bcrypt hash suitable for
// auth.curator_password_hash. The password is read from stdin so it never
// lands in shell history.
func newAdminHashPasswordCmd(stdin io.Reader, jsonOutput *bool) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a curator password for auth.curator_password_hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}
			passwordBytes, err := io.ReadAll(stdin)
			if err != nil {
				return err
			}
			password := strings.TrimSpace(string(passwordBytes))
			hash, err := internalauth.HashPassword(password)
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(map[string]string{"username": internalauth.CuratorUsername, "hash": hash})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	return cmd
}
