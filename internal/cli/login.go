package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/client"
)

func newLoginCmd() *cobra.Command {
	var server, emailAddr, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store an admin token",
		Long:  "Authenticates with admin credentials and stores the returned token for CLI access.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout()
			var err error
			if emailAddr == "" {
				if emailAddr, err = prompt(in, out, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(in, out, "Password: "); err != nil {
					return err
				}
			}
			return runLogin(out, server, emailAddr, password)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")
	cmd.Flags().StringVar(&emailAddr, "email", "", "admin email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when empty)")

	return cmd
}

func runLogin(w io.Writer, serverFlag, emailAddr, password string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	if strings.TrimSpace(emailAddr) == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	resp, err := client.New(serverURL, "").Login(emailAddr, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := rememberLogin(serverFlag, resp.Token, resp.ExpiresAt); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintf(w, "✓ Logged in as %s. Token expires %s.\n", resp.User.Email, resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
