package store

import (
	"github.com/tiplinehq/tipline/migrations"
)

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}
