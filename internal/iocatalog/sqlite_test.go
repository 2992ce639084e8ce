package iocatalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/pkg/record"
)

func ptr(s string) *string { return &s }

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, closeFn, err := NewSQLite(path)
	require.NoError(t, err)
	defer closeFn()

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosa",
		CommonName: "Swiss Cheese Plant",
	}

	id1, err := store.PersistTaxonomy(ctx, tax)
	require.NoError(t, err)
	assert.NotEmpty(t, id1)

	// Same taxonomy persists to the same row.
	id2, err := store.PersistTaxonomy(ctx, tax)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	plants, err := store.GetCatalogSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, id1, plants[0].ID)
	assert.Equal(t, "Monstera", plants[0].Genus)
	assert.False(t, plants[0].Verified)
	assert.Nil(t, plants[0].Cultivar)

	// Cultivar changes the identity.
	withCultivar := tax
	withCultivar.Cultivar = ptr("Thai Constellation")
	id3, err := store.PersistTaxonomy(ctx, withCultivar)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	plants, err = store.GetCatalogSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, 2)
}

func TestSQLiteInstanceAndParentLookup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, closeFn, err := NewSQLite(path)
	require.NoError(t, err)
	defer closeFn()

	acquired := time.Date(2023, 5, 14, 0, 0, 0, 0, time.UTC)
	rec := &record.ProcessedRecord{
		Type: record.TypeInstance,
		Row:  1,
		Taxonomy: record.Taxonomy{
			Family:     "Asparagaceae",
			Genus:      "Dracaena",
			Species:    "trifasciata",
			CommonName: "Snake Plant",
		},
		Instance: &record.InstanceFields{
			Nickname:   ptr("Steve"),
			Location:   ptr("Bedroom"),
			AcquiredOn: &acquired,
		},
	}

	// Empty plantID triggers on-the-fly taxonomy creation.
	instID, err := store.PersistInstance(ctx, rec, "", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, instID)

	plants, err := store.GetCatalogSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, 1)

	// Nickname lookup is case-insensitive and scoped to the user.
	got, err := store.ResolveParentInstance(ctx, "steve", "user-1")
	require.NoError(t, err)
	assert.Equal(t, instID, got)

	got, err = store.ResolveParentInstance(ctx, "steve", "user-2")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.ResolveParentInstance(ctx, "unknown", "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLitePropagation(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, closeFn, err := NewSQLite(path)
	require.NoError(t, err)
	defer closeFn()

	started := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rec := &record.ProcessedRecord{
		Type: record.TypePropagation,
		Row:  1,
		Taxonomy: record.Taxonomy{
			Family:     "Araceae",
			Genus:      "Epipremnum",
			Species:    "aureum",
			CommonName: "Golden Pothos",
		},
		Propagation: &record.PropagationFields{
			DateStarted:    &started,
			SourceType:     record.SourceExternal,
			ExternalSource: record.SourceNursery,
		},
	}

	propID, err := store.PersistPropagation(ctx, rec, "", "", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, propID)
}

func TestSQLiteOpenFailure(t *testing.T) {
	// A directory path cannot be opened as a database file.
	_, _, err := NewSQLite(t.TempDir())
	assert.Error(t, err)
}
