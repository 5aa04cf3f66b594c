package auth

import (
	"context"
	"fmt"
	"log/slog"
)

// Models returns the gorm models owned by this package.
func Models() []interface{} {
	return []interface{}{&User{}, &Session{}, &PasskeyCredential{}}
}

// BootstrapAdmin creates the configured admin account when no users exist.
// It does nothing when email or password is empty or users already exist.
func BootstrapAdmin(ctx context.Context, users *UserStore, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	u, err := users.Create(ctx, email, password, "Admin", RoleAdmin)
	if err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}
	slog.Info("created bootstrap admin", "email", u.Email)
	return nil
}
