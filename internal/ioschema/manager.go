// Package ioschema implements the SchemaManager contract for the
// catalog database. This is an impure I/O package that wraps GORM
// AutoMigrate functionality.
package ioschema

import (
	"context"

	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/verdant/plantimport/pkg/db"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/schema"
)

// manager implements pipeline.SchemaManager using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) pipeline.SchemaManager {
	return &manager{operator: op}
}

// Create creates the initial database schema using GORM AutoMigrate.
// Safe to run on an empty database; the CLI decides whether existing
// tables should be dropped first.
func (m *manager) Create(ctx context.Context) error {
	return m.migrate(ctx)
}

// Migrate updates the database schema to the latest version using
// GORM AutoMigrate. Idempotent.
func (m *manager) Migrate(ctx context.Context) error {
	return m.migrate(ctx)
}

func (m *manager) migrate(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return MigrateError(err)
	}

	return nil
}
