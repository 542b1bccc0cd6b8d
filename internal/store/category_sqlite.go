package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/titanium/backend/types"
)

// SQLiteCategoryRepository handles persistence for categories on sqlite.
// Semantics match PostgresCategoryRepository.
type SQLiteCategoryRepository struct {
	db *sql.DB
}

func NewSQLiteCategoryRepository(db *sql.DB) *SQLiteCategoryRepository {
	return &SQLiteCategoryRepository{db: db}
}

func (r *SQLiteCategoryRepository) GetByName(ctx context.Context, name string) (types.Category, error) {
	const query = `SELECT id, name, slug, color FROM categories WHERE name = ?`
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

func (r *SQLiteCategoryRepository) GetOrCreate(ctx context.Context, name string) (types.Category, error) {
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
	const insert = `INSERT INTO categories (name, slug, color) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, insert, cat.Name, cat.Slug, cat.Color)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return r.GetByName(ctx, name)
		}
		return types.Category{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return types.Category{}, err
	}
	cat.ID = int(id)
	return cat, nil
}

func (r *SQLiteCategoryRepository) ListWithCounts(ctx context.Context) ([]types.Category, error) {
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

func (r *SQLiteCategoryRepository) DeleteEmpty(ctx context.Context) (int, error) {
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
