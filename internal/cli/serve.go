package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/config"
	"github.com/adway7103/broker-demo/internal/email"
	"github.com/adway7103/broker-demo/internal/logging"
	"github.com/adway7103/broker-demo/internal/storage"
	"github.com/adway7103/broker-demo/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Start the public website, the admin back-office and the REST API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, cmd.Flags().Changed("port"))
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides BROKER_PORT)")

	return cmd
}

func runServe(ctx context.Context, port int, portSet bool) error {
	cfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	if !portSet {
		port = cfg.Port
	}

	logging.Setup(cfg.DevMode)
	if cfg.UsingDevSecret() {
		slog.Warn("using the development JWT secret, set BROKER_JWT_SECRET in production")
	}

	gdb, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(gdb)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := auth.NewUserStore(gdb)
	if err := auth.BootstrapAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	opts, err := serverOptions(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := web.NewServer(gdb, opts)
	if err != nil {
		return err
	}

	slog.Info("starting broker", "port", port, "db_driver", cfg.DBDriver, "dev", cfg.DevMode)
	return srv.ListenAndServe(ctx, port)
}

// serverOptions wires the optional S3 and SMTP integrations.
func serverOptions(ctx context.Context, cfg config.Config) (web.Options, error) {
	opts := web.Options{
		BaseURL:        cfg.BaseURL,
		DevMode:        cfg.DevMode,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		UploadMaxBytes: cfg.UploadMaxBytes,
	}

	if cfg.StorageConfigured() {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.AWSBucket,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
		if err != nil {
			return web.Options{}, fmt.Errorf("configuring image storage: %w", err)
		}
		opts.Storage = store
		slog.Info("image uploads enabled", "bucket", cfg.AWSBucket, "region", cfg.AWSRegion)
	} else {
		slog.Warn("AWS_REGION or AWS_BUCKET_NAME not set, image uploads disabled")
	}

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	// A nil *LeadNotifier must not become a non-nil interface.
	if n := email.NewLeadNotifier(smtp, cfg.NotifyEmail, cfg.BaseURL); n != nil {
		opts.Notifier = n
	} else {
		slog.Info("lead notifications disabled")
	}

	return opts, nil
}
