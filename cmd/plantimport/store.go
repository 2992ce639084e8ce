package main

import (
	"context"
	"fmt"

	"github.com/gnames/gn"
	"github.com/verdant/plantimport/internal/iocatalog"
	"github.com/verdant/plantimport/internal/iodb"
	"github.com/verdant/plantimport/pkg/db"
	"github.com/verdant/plantimport/pkg/errcode"
	"github.com/verdant/plantimport/pkg/pipeline"
)

// openStore opens the catalog store the import commands work against:
// a single-file SQLite catalog when sqlitePath is set, the configured
// PostgreSQL database otherwise.
func openStore(
	ctx context.Context,
	sqlitePath string,
) (pipeline.CatalogStore, func(), error) {
	if sqlitePath != "" {
		store, closeFn, err := iocatalog.NewSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		gn.Info("Using SQLite catalog: <em>%s</em>", sqlitePath)
		return store, func() { _ = closeFn() }, nil
	}

	cfg := getConfig()
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, nil, err
	}

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	if err := checkSchema(ctx, op); err != nil {
		_ = op.Close()
		return nil, nil, err
	}

	return iocatalog.NewPg(op), func() { _ = op.Close() }, nil
}

// checkSchema verifies the plants table exists before an import
// command touches the database.
func checkSchema(ctx context.Context, op db.Operator) error {
	exists, err := op.TableExists(ctx, "plants")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	msg := `Database schema is missing

<em>How to fix:</em>
  1. Run: <em>plantimport create</em> to initialize the schema`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("table plants does not exist"),
	}
}
