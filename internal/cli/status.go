package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks if the stored admin token is valid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

func runStatus(w io.Writer) error {
	serverURL := getServerURL()
	token := getToken()

	fmt.Fprintf(w, "Server:  %s\n", serverURL)

	if token == "" {
		if cfg, err := loadConfig(); err == nil && cfg.Token != "" && cfg.expired(time.Now()) {
			fmt.Fprintf(w, "Token:   expired %s\n", humanize.Time(cfg.ExpiresAt))
			fmt.Fprintln(w, "\nRun 'broker login' to re-authenticate.")
			return nil
		}
		fmt.Fprintln(w, "Token:   not configured")
		fmt.Fprintln(w, "\nRun 'broker login' to authenticate.")
		return nil
	}

	prefix := token
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	fmt.Fprintf(w, "Token:   %s…\n", prefix)

	stats, err := client.New(serverURL, token).Stats()
	switch {
	case err == nil:
		fmt.Fprintln(w, "Status:  ✓ connected and authenticated")
		fmt.Fprintf(w, "Data:    %s properties, %s leads, %s shortlists\n",
			humanize.Comma(stats.Properties), humanize.Comma(stats.Leads), humanize.Comma(stats.Shortlists))
	case client.Unauthorized(err):
		fmt.Fprintln(w, "Status:  ✗ invalid or expired token")
		fmt.Fprintln(w, "\nRun 'broker login' to re-authenticate.")
	default:
		if apiErr, ok := err.(*client.Error); ok {
			fmt.Fprintf(w, "Status:  ✗ unexpected response (%d)\n", apiErr.Status)
		} else {
			fmt.Fprintf(w, "Status:  ✗ cannot reach server (%v)\n", err)
		}
	}

	return nil
}
