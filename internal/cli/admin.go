package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/auth"
)

func newCreateAdminCmd() *cobra.Command {
	var emailAddr, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  "Create an admin account in the database, or reset the password of an existing one with --reset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reset, _ := cmd.Flags().GetBool("reset")
			if password == "" {
				var err error
				password, err = prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}
			return runCreateAdmin(cmd.Context(), cmd.OutOrStdout(), emailAddr, password, name, reset)
		},
	}

	cmd.Flags().StringVar(&emailAddr, "email", "", "admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	cmd.Flags().Bool("reset", false, "set a new password for an existing admin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runCreateAdmin(ctx context.Context, w io.Writer, emailAddr, password, name string, reset bool) error {
	cfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	gdb, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(gdb)

	users := auth.NewUserStore(gdb)
	if reset {
		if err := users.SetPassword(ctx, emailAddr, password); err != nil {
			return err
		}
		fmt.Fprintf(w, "✓ Password updated for %s\n", emailAddr)
		return nil
	}

	u, err := users.Create(ctx, emailAddr, password, name, auth.RoleAdmin)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Admin %s created (%s)\n", u.Email, u.ID)
	return nil
}

// prompt prints label and reads one trimmed line from r. Share r across
// prompts so buffered input is not lost.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
