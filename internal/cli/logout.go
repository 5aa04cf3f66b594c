package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored admin token",
		Long:  "Removes the stored admin token from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.OutOrStdout())
		},
	}
}

func runLogout(w io.Writer) error {
	removed, err := forgetLogin()
	if err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	if !removed {
		fmt.Fprintln(w, "Not logged in.")
		return nil
	}

	fmt.Fprintln(w, "✓ Logged out. Token removed.")
	return nil
}
