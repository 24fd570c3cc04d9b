package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/internal/repository"
)

type drugRepository struct {
	BaseRepository
}

func NewDrugRepository(base BaseRepository) repository.DrugRepository {
	return &drugRepository{base}
}

// drugRow maps the drugs table. Monitoring is a text[] column, which
// sqlx cannot scan into a plain []string.
type drugRow struct {
	model.DrugRecord
	MonitoringArr pq.StringArray `db:"monitoring"`
}

func (row *drugRow) record() *model.DrugRecord {
	rec := row.DrugRecord
	rec.Monitoring = []string(row.MonitoringArr)
	return &rec
}

const drugColumns = `
	name, route, half_life_hours, time_to_peak_hours,
	bioavailability, ester_factor, default_dose_mg, max_safe_dose_mg,
	monitoring, risk_level, metabolism, description
`

func (r *drugRepository) Upsert(ctx context.Context, drug *model.DrugRecord) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.upsertTx(ctx, tx, drug)
	})
}

// UpsertWithEvent writes the record and its outbox event in one
// transaction, so the event cannot outlive a rolled-back upsert.
func (r *drugRepository) UpsertWithEvent(ctx context.Context, drug *model.DrugRecord, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.upsertTx(ctx, tx, drug); err != nil {
			return err
		}
		return insertOutboxEventTx(ctx, tx, event)
	})
}

func (r *drugRepository) upsertTx(ctx context.Context, tx *sqlx.Tx, drug *model.DrugRecord) error {
	query := `
		INSERT INTO drugs (` + drugColumns + `, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			route = EXCLUDED.route,
			half_life_hours = EXCLUDED.half_life_hours,
			time_to_peak_hours = EXCLUDED.time_to_peak_hours,
			bioavailability = EXCLUDED.bioavailability,
			ester_factor = EXCLUDED.ester_factor,
			default_dose_mg = EXCLUDED.default_dose_mg,
			max_safe_dose_mg = EXCLUDED.max_safe_dose_mg,
			monitoring = EXCLUDED.monitoring,
			risk_level = EXCLUDED.risk_level,
			metabolism = EXCLUDED.metabolism,
			description = EXCLUDED.description,
			updated_at = NOW()
	`

	_, err := tx.ExecContext(ctx, query,
		drug.Name,
		drug.Route,
		drug.HalfLifeHours,
		drug.TimeToPeakHours,
		drug.Bioavailability,
		drug.EsterFactor,
		drug.DefaultDoseMg,
		drug.MaxSafeDoseMg,
		pq.StringArray(drug.Monitoring),
		drug.RiskLevel,
		drug.Metabolism,
		drug.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert drug: %w", err)
	}
	return nil
}

func (r *drugRepository) Get(ctx context.Context, name string) (*model.DrugRecord, error) {
	query := `SELECT ` + drugColumns + ` FROM drugs WHERE name = $1`

	var row drugRow
	if err := r.GetDB().GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get drug: %w", err)
	}
	return row.record(), nil
}

func (r *drugRepository) List(ctx context.Context) ([]*model.DrugRecord, error) {
	query := `SELECT ` + drugColumns + ` FROM drugs ORDER BY name ASC`

	var rows []drugRow
	if err := r.GetDB().SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list drugs: %w", err)
	}

	drugs := make([]*model.DrugRecord, 0, len(rows))
	for i := range rows {
		drugs = append(drugs, rows[i].record())
	}
	return drugs, nil
}

func (r *drugRepository) Delete(ctx context.Context, name string) error {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM drugs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete drug: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Seed inserts records that have no row yet and leaves existing rows
// untouched, so operator edits survive restarts.
func (r *drugRepository) Seed(ctx context.Context, drugs []*model.DrugRecord) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO drugs (` + drugColumns + `, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			ON CONFLICT (name) DO NOTHING
		`
		for _, drug := range drugs {
			_, err := tx.ExecContext(ctx, query,
				drug.Name,
				drug.Route,
				drug.HalfLifeHours,
				drug.TimeToPeakHours,
				drug.Bioavailability,
				drug.EsterFactor,
				drug.DefaultDoseMg,
				drug.MaxSafeDoseMg,
				pq.StringArray(drug.Monitoring),
				drug.RiskLevel,
				drug.Metabolism,
				drug.Description,
			)
			if err != nil {
				return fmt.Errorf("failed to seed drug %s: %w", drug.Name, err)
			}
		}
		return nil
	})
}
