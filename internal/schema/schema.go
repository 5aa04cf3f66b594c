// Package schema opens the broker database with every table migrated.
package schema

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/auth"
	"github.com/adway7103/broker-demo/internal/db"
	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
	"github.com/adway7103/broker-demo/internal/shortlist"
)

// Models returns every persisted model in dependency order.
func Models() []interface{} {
	models := []interface{}{&property.Property{}, &lead.Lead{}, &shortlist.Shortlist{}}
	return append(models, auth.Models()...)
}

// Open connects to the database and brings the schema up to date.
func Open(cfg db.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb, Models()...); err != nil {
		if cerr := db.Close(gdb); cerr != nil {
			return nil, fmt.Errorf("%w (closing: %v)", err, cerr)
		}
		return nil, err
	}
	return gdb, nil
}
