package schema

import (
	"path/filepath"
	"testing"

	"github.com/adway7103/broker-demo/internal/db"
)

func TestOpenMigratesAllTables(t *testing.T) {
	gdb, err := Open(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "nested", "broker.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	for _, table := range []string{"properties", "leads", "shortlists", "users", "sessions", "passkey_credentials"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}

	// Running again must be a no-op.
	if err := db.Migrate(gdb, Models()...); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(db.Config{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
