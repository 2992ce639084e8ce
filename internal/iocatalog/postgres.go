package iocatalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/verdant/plantimport/pkg/db"
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/record"
)

type pgStore struct {
	op db.Operator
}

// NewPg creates a CatalogStore over a connected PostgreSQL operator.
func NewPg(op db.Operator) pipeline.CatalogStore {
	return &pgStore{op: op}
}

func (s *pgStore) GetCatalogSnapshot(
	ctx context.Context,
) ([]match.CatalogPlant, error) {
	pool := s.op.Pool()
	if pool == nil {
		return nil, SnapshotError(errors.New("not connected"))
	}

	rows, err := pool.Query(ctx, `
SELECT id, family, genus, species, cultivar, common_name, verified
  FROM plants`)
	if err != nil {
		return nil, SnapshotError(err)
	}
	defer rows.Close()

	var res []match.CatalogPlant
	for rows.Next() {
		var p match.CatalogPlant
		err = rows.Scan(
			&p.ID, &p.Family, &p.Genus, &p.Species,
			&p.Cultivar, &p.CommonName, &p.Verified,
		)
		if err != nil {
			return nil, SnapshotError(err)
		}
		res = append(res, p)
	}
	if err = rows.Err(); err != nil {
		return nil, SnapshotError(err)
	}
	return res, nil
}

func (s *pgStore) PersistTaxonomy(
	ctx context.Context,
	tax record.Taxonomy,
) (string, error) {
	id := plantID(tax)
	_, err := s.op.Pool().Exec(ctx, `
INSERT INTO plants
  (id, family, genus, species, cultivar, common_name, verified,
   created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, false, now(), now())
ON CONFLICT (id) DO UPDATE
  SET common_name = EXCLUDED.common_name,
      updated_at = now()`,
		id, tax.Family, tax.Genus, tax.Species,
		tax.Cultivar, tax.CommonName,
	)
	if err != nil {
		return "", PersistError("taxonomy", err)
	}
	return id, nil
}

func (s *pgStore) PersistInstance(
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
	inst := rec.Instance
	_, err := s.op.Pool().Exec(ctx, `
INSERT INTO plant_instances
  (id, plant_id, user_id, nickname, location, fertilizer_schedule,
   acquired_on, last_fertilized, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		id, plantID, userID,
		inst.Nickname, inst.Location, inst.FertilizerSchedule,
		inst.AcquiredOn, inst.LastFertilized,
	)
	if err != nil {
		return "", PersistError("instance", err)
	}
	return id, nil
}

func (s *pgStore) PersistPropagation(
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

	_, err := s.op.Pool().Exec(ctx, `
INSERT INTO propagations
  (id, plant_id, user_id, parent_instance_id, source_type,
   external_source, date_started, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		id, plantID, userID, parent,
		string(prop.SourceType), extSource, prop.DateStarted,
	)
	if err != nil {
		return "", PersistError("propagation", err)
	}
	return id, nil
}

func (s *pgStore) ResolveParentInstance(
	ctx context.Context,
	name string,
	userID string,
) (string, error) {
	var id string
	err := s.op.Pool().QueryRow(ctx, `
SELECT id FROM plant_instances
 WHERE user_id = $1 AND lower(nickname) = lower($2)
 ORDER BY created_at
 LIMIT 1`,
		userID, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", LookupError(err)
	}
	return id, nil
}
