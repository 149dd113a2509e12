// Package db provides shared database helpers used by the service packages.
package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a row-level "SELECT ... FOR UPDATE" lock to the query.
// SQLite has no row-level locking syntax and serializes writers globally, so
// the clause is skipped there; the mutation ordering the lock provides on
// MySQL and Postgres is given by the database itself.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}

	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
