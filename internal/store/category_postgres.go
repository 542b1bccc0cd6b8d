package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/titanium/backend/types"
)

// PostgresCategoryRepository handles persistence for categories on postgres.
type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func (r *PostgresCategoryRepository) GetByName(ctx context.Context, name string) (types.Category, error) {
	const query = `SELECT id, name, slug, color FROM categories WHERE name = $1`
	var cat types.Category
	err := r.db.QueryRowContext(ctx, query, name).Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Category{}, ErrNotFound
		}
		return types.Category{}, err
	}
	return cat, nil
}

// GetOrCreate returns the category with the given name, creating it with a
// generated slug and color when it does not exist. A concurrent insert losing
// the unique-constraint race falls back to re-reading the winner's row.
func (r *PostgresCategoryRepository) GetOrCreate(ctx context.Context, name string) (types.Category, error) {
	cat, err := r.GetByName(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return types.Category{}, err
	}

	cat = types.Category{
		Name:  name,
		Slug:  Slugify(name),
		Color: randomColor(),
	}
	const insert = `
		INSERT INTO categories (name, slug, color)
		VALUES ($1, $2, $3)
		RETURNING id`
	err = r.db.QueryRowContext(ctx, insert, cat.Name, cat.Slug, cat.Color).Scan(&cat.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return r.GetByName(ctx, name)
		}
		return types.Category{}, err
	}
	return cat, nil
}

func (r *PostgresCategoryRepository) ListWithCounts(ctx context.Context) ([]types.Category, error) {
	const query = `
		SELECT c.id, c.name, c.slug, c.color, COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON c.id = p.category_id
		GROUP BY c.id, c.name, c.slug, c.color
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []types.Category{}
	for rows.Next() {
		var cat types.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Color, &cat.PostCount); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// DeleteEmpty removes categories that no post references and returns how many
// were removed.
func (r *PostgresCategoryRepository) DeleteEmpty(ctx context.Context) (int, error) {
	const query = `
		DELETE FROM categories
		WHERE id NOT IN (SELECT DISTINCT category_id FROM posts)`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
