package main

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/pkg/config"
)

type fakeOperator struct {
	tableExists bool
	tableErr    error
}

func (f *fakeOperator) Connect(
	_ context.Context, _ *config.DatabaseConfig,
) error {
	return nil
}

func (f *fakeOperator) Close() error        { return nil }
func (f *fakeOperator) Pool() *pgxpool.Pool { return nil }

func (f *fakeOperator) TableExists(
	_ context.Context, _ string,
) (bool, error) {
	return f.tableExists, f.tableErr
}

func (f *fakeOperator) HasTables(_ context.Context) (bool, error) {
	return f.tableExists, nil
}

func (f *fakeOperator) DropAllTables(_ context.Context) error { return nil }

func TestCheckSchemaPresent(t *testing.T) {
	op := &fakeOperator{tableExists: true}
	assert.NoError(t, checkSchema(context.Background(), op))
}

func TestCheckSchemaMissingTable(t *testing.T) {
	op := &fakeOperator{tableExists: false}
	err := checkSchema(context.Background(), op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plants")
}

func TestCheckSchemaQueryError(t *testing.T) {
	op := &fakeOperator{tableErr: errors.New("connection refused")}
	err := checkSchema(context.Background(), op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
