package store

import (
	"context"
	"fmt"
	"time"

	"catcare/internal/utils"
	"catcare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const catTableName = "catcare.cats"

var catColumns = utils.Columns[types.Cat]()

type CatRepository struct {
	pool *pgxpool.Pool
}

func NewCatRepository(pool *pgxpool.Pool) *CatRepository {
	return &CatRepository{pool: pool}
}

func (r *CatRepository) Cats(ctx context.Context) ([]*types.Cat, error) {
	query, args, err := psql().
		Select(catColumns...).
		From(catTableName).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cats query: %w", err)
	}

	var cats []*types.Cat
	err = pgxscan.Select(ctx, r.pool, &cats, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cats: %w", err)
	}

	return cats, nil
}

func (r *CatRepository) CatsByIDs(ctx context.Context, ids []string) ([]*types.Cat, error) {
	if len(ids) == 0 {
		return []*types.Cat{}, nil
	}

	query, args, err := psql().
		Select(catColumns...).
		From(catTableName).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cats-by-ids query: %w", err)
	}

	var cats []*types.Cat
	err = pgxscan.Select(ctx, r.pool, &cats, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cats by ids: %w", err)
	}

	return cats, nil
}

func (r *CatRepository) Cat(ctx context.Context, id string) (*types.Cat, error) {
	query, args, err := psql().
		Select(catColumns...).
		From(catTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cat query: %w", err)
	}

	var cat types.Cat
	err = pgxscan.Get(ctx, r.pool, &cat, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCatNotFound
		}
		return nil, fmt.Errorf("failed to fetch cat: %w", err)
	}

	return &cat, nil
}

func (r *CatRepository) CreateCat(ctx context.Context, cat *types.Cat) error {
	now := time.Now()
	if cat.ID == "" {
		cat.ID = utils.NewID()
	}
	cat.CreatedAt = now
	cat.UpdatedAt = now

	query, args, err := psql().
		Insert(catTableName).
		SetMap(utils.Values(cat)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create cat query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create cat: %w", err)
	}

	return nil
}

// UpdateCat writes the roster fields of cat. The photo has its own write
// in SetPhoto and is left alone here.
func (r *CatRepository) UpdateCat(ctx context.Context, id string, cat *types.Cat) error {
	cat.ID = id
	cat.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(catTableName).
		SetMap(catUpdateColumns(cat)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update cat query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update cat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrCatNotFound
	}

	return nil
}

func catUpdateColumns(cat *types.Cat) map[string]any {
	columns := utils.Values(cat)
	for _, c := range []string{"id", "photo_key", "photo_url", "created_at"} {
		delete(columns, c)
	}
	return columns
}

func (r *CatRepository) SetPhoto(ctx context.Context, id, key, url string) error {
	query, args, err := psql().
		Update(catTableName).
		SetMap(map[string]any{
			"photo_key":  key,
			"photo_url":  url,
			"updated_at": time.Now(),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set cat photo query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set cat photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrCatNotFound
	}

	return nil
}

// DeleteCat removes the cat. Events referencing it keep their rows with
// the cat reference cleared by the foreign key.
func (r *CatRepository) DeleteCat(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(catTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete cat query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete cat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrCatNotFound
	}

	return nil
}
