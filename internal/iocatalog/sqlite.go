package iocatalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/record"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGo)
)

// sqliteSchema mirrors the PostgreSQL tables with SQLite types.
// Timestamps are RFC 3339 text.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS plants (
  id TEXT PRIMARY KEY,
  family TEXT NOT NULL,
  genus TEXT NOT NULL,
  species TEXT NOT NULL,
  cultivar TEXT,
  common_name TEXT NOT NULL,
  verified INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plant_instances (
  id TEXT PRIMARY KEY,
  plant_id TEXT NOT NULL REFERENCES plants(id),
  user_id TEXT NOT NULL,
  nickname TEXT,
  location TEXT,
  fertilizer_schedule TEXT,
  acquired_on TEXT,
  last_fertilized TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_instances_user
  ON plant_instances(user_id);

CREATE TABLE IF NOT EXISTS propagations (
  id TEXT PRIMARY KEY,
  plant_id TEXT NOT NULL REFERENCES plants(id),
  user_id TEXT NOT NULL,
  parent_instance_id TEXT REFERENCES plant_instances(id),
  source_type TEXT NOT NULL,
  external_source TEXT,
  date_started TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_propagations_user
  ON propagations(user_id);
`

type sqliteStore struct {
	db   *sql.DB
	path string
}

// NewSQLite opens or creates a single-file SQLite catalog and returns
// a CatalogStore over it. The caller closes it with the returned
// close function.
func NewSQLite(path string) (pipeline.CatalogStore, func() error, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, SQLiteOpenError(path, err)
	}
	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, nil, SQLiteOpenError(path, err)
	}
	return &sqliteStore{db: db, path: path}, db.Close, nil
}

func (s *sqliteStore) GetCatalogSnapshot(
	ctx context.Context,
) ([]match.CatalogPlant, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, family, genus, species, cultivar, common_name, verified
  FROM plants`)
	if err != nil {
		return nil, SnapshotError(err)
	}
	defer rows.Close()

	var res []match.CatalogPlant
	for rows.Next() {
		var p match.CatalogPlant
		var cultivar sql.NullString
		err = rows.Scan(
			&p.ID, &p.Family, &p.Genus, &p.Species,
			&cultivar, &p.CommonName, &p.Verified,
		)
		if err != nil {
			return nil, SnapshotError(err)
		}
		if cultivar.Valid {
			p.Cultivar = &cultivar.String
		}
		res = append(res, p)
	}
	if err = rows.Err(); err != nil {
		return nil, SnapshotError(err)
	}
	return res, nil
}

func (s *sqliteStore) PersistTaxonomy(
	ctx context.Context,
	tax record.Taxonomy,
) (string, error) {
	id := plantID(tax)
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO plants
  (id, family, genus, species, cultivar, common_name, verified,
   created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
ON CONFLICT (id) DO UPDATE
  SET common_name = excluded.common_name,
      updated_at = excluded.updated_at`,
		id, tax.Family, tax.Genus, tax.Species,
		tax.Cultivar, tax.CommonName, now, now,
	)
	if err != nil {
		return "", PersistError("taxonomy", err)
	}
	return id, nil
}

func (s *sqliteStore) PersistInstance(
	ctx context.Context,
	rec *record.ProcessedRecord,
	plantID string,
	userID string,
) (string, error) {
	if plantID == "" {
		var err error
		plantID, err = s.PersistTaxonomy(ctx, rec.Taxonomy)
		if err != nil {
			return "", err
		}
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	inst := rec.Instance
	_, err := s.db.ExecContext(ctx, `
INSERT INTO plant_instances
  (id, plant_id, user_id, nickname, location, fertilizer_schedule,
   acquired_on, last_fertilized, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, plantID, userID,
		inst.Nickname, inst.Location, inst.FertilizerSchedule,
		sqliteDate(inst.AcquiredOn), sqliteDate(inst.LastFertilized),
		now, now,
	)
	if err != nil {
		return "", PersistError("instance", err)
	}
	return id, nil
}

func (s *sqliteStore) PersistPropagation(
	ctx context.Context,
	rec *record.ProcessedRecord,
	plantID string,
	parentID string,
	userID string,
) (string, error) {
	if plantID == "" {
		var err error
		plantID, err = s.PersistTaxonomy(ctx, rec.Taxonomy)
		if err != nil {
			return "", err
		}
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	prop := rec.Propagation

	var parent *string
	if parentID != "" {
		parent = &parentID
	}
	var extSource *string
	if prop.SourceType == record.SourceExternal {
		s := string(prop.ExternalSource)
		extSource = &s
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO propagations
  (id, plant_id, user_id, parent_instance_id, source_type,
   external_source, date_started, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, plantID, userID, parent,
		string(prop.SourceType), extSource,
		sqliteDate(prop.DateStarted), now, now,
	)
	if err != nil {
		return "", PersistError("propagation", err)
	}
	return id, nil
}

func (s *sqliteStore) ResolveParentInstance(
	ctx context.Context,
	name string,
	userID string,
) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
SELECT id FROM plant_instances
 WHERE user_id = ? AND lower(nickname) = lower(?)
 ORDER BY created_at
 LIMIT 1`,
		userID, name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", LookupError(err)
	}
	return id, nil
}

func sqliteDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
