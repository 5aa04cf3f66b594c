// Package cli defines the cobra command tree for the broker binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/client"
	"github.com/adway7103/broker-demo/internal/config"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/schema"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "broker",
		Short:         "Run and manage a property brokerage site",
		Long:          "Serve the brokerage website and admin back-office, manage the database, and browse listings, leads and shortlists from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database DSN, overrides BROKER_DB_DSN (default: ~/.broker/broker.db)")

	root.AddCommand(
		newServeCmd(),
		newCreateAdminCmd(),
		newSeedCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newPropertiesCmd(),
		newLeadsCmd(),
		newShortlistsCmd(),
		newLinkCmd(),
		newVersionCmd(),
	)

	return root
}

// loadServerConfig reads the server configuration, applying the --db flag.
func loadServerConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flagDB != "" {
		cfg.DBDSN = flagDB
	}
	return cfg, nil
}

// openDB opens and migrates the database named by the server config.
// Used by commands that work on the database directly.
func openDB(cfg config.Config) (*gorm.DB, error) {
	return schema.Open(db.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN, DevMode: cfg.DevMode})
}

// newAPIClient creates an HTTP client for the broker API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(gdb *gorm.DB) {
	if err := db.Close(gdb); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// apiError rewrites a 401 from the server into a hint to log in again.
func apiError(err error) error {
	if client.Unauthorized(err) {
		return fmt.Errorf("%w (run 'broker login')", err)
	}
	return err
}
