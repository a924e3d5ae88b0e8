package store

import (
	"context"
	"fmt"

	"catcare/internal/utils"
	"catcare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clinicTableName = "catcare.clinics"

var clinicColumns = utils.Columns[types.Clinic]()

// ClinicRepository serves the clinic directory from the clinics table.
type ClinicRepository struct {
	pool *pgxpool.Pool
}

func NewClinicRepository(pool *pgxpool.Pool) *ClinicRepository {
	return &ClinicRepository{pool: pool}
}

func (r *ClinicRepository) Clinics(ctx context.Context) ([]*types.Clinic, error) {
	query, args, err := psql().
		Select(clinicColumns...).
		From(clinicTableName).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate clinics query: %w", err)
	}

	var clinics []*types.Clinic
	err = pgxscan.Select(ctx, r.pool, &clinics, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clinics: %w", err)
	}

	return clinics, nil
}

func (r *ClinicRepository) ClinicByID(ctx context.Context, id string) (*types.Clinic, error) {
	return r.clinicWhere(ctx, sq.Eq{"id": id})
}

func (r *ClinicRepository) ClinicByVeterinarian(ctx context.Context, veterinarian string) (*types.Clinic, error) {
	return r.clinicWhere(ctx, sq.Expr("LOWER(veterinarian) = LOWER(?)", veterinarian))
}

func (r *ClinicRepository) clinicWhere(ctx context.Context, where sq.Sqlizer) (*types.Clinic, error) {
	query, args, err := psql().
		Select(clinicColumns...).
		From(clinicTableName).
		Where(where).
		OrderBy("name ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate clinic query: %w", err)
	}

	var clinic types.Clinic
	err = pgxscan.Get(ctx, r.pool, &clinic, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to fetch clinic: %w", err)
	}

	return &clinic, nil
}

func (r *ClinicRepository) UpsertClinic(ctx context.Context, clinic *types.Clinic) error {
	query, args, err := psql().
		Insert(clinicTableName).
		SetMap(utils.Values(clinic)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, veterinarian = EXCLUDED.veterinarian, location = EXCLUDED.location").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert clinic query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert clinic: %w", err)
	}

	return nil
}
