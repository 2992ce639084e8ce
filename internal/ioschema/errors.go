package ioschema

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/verdant/plantimport/pkg/errcode"
)

// NotConnectedError creates an error for schema operations attempted
// without a database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for a failed GORM session.
func GORMConnectionError(err error) error {
	msg := `Cannot open GORM session over the connection pool`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("gorm connection failed: %w", err),
	}
}

// MigrateError creates an error for a failed AutoMigrate run.
func MigrateError(err error) error {
	msg := `Schema migration failed

<em>Possible causes:</em>
  - Insufficient database privileges
  - Conflicting manual schema changes

<em>How to fix:</em>
  1. Verify the database user can create and alter tables
  2. Inspect the underlying error below`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("schema migration failed: %w", err),
	}
}
