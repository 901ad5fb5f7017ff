// Package store holds the database abstraction shared by repositories.
package store

import (
	"database/sql"
)

type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
