package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/titanium/backend/types"
)

const postgresPostColumns = `
	p.id, p.title, p.content, p.author, p.created_at, p.updated_at,
	c.id, c.name, c.slug, c.color`

// PostgresPostRepository handles persistence for posts on postgres.
type PostgresPostRepository struct {
	db *sql.DB
}

func NewPostgresPostRepository(db *sql.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	query := `
		SELECT ` + postgresPostColumns + `
		FROM posts p
		INNER JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`
	return scanPostgresPost(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresPostRepository) List(ctx context.Context, offset, limit int, categorySlug string) ([]types.Post, error) {
	query := `
		SELECT ` + postgresPostColumns + `
		FROM posts p
		INNER JOIN categories c ON p.category_id = c.id`
	args := []any{}
	if categorySlug != "" {
		query += ` WHERE c.slug = $1 ORDER BY p.id DESC LIMIT $2 OFFSET $3`
		args = append(args, categorySlug, limit, offset)
	} else {
		query += ` ORDER BY p.id DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []types.Post{}
	for rows.Next() {
		var post types.Post
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.Author,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.Category.ID,
			&post.Category.Name,
			&post.Category.Slug,
			&post.Category.Color,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostgresPostRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

func (r *PostgresPostRepository) Create(ctx context.Context, title, content, author string, categoryID int) (types.Post, error) {
	const query = `
		INSERT INTO posts (title, content, author, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int
	err := r.db.QueryRowContext(ctx, query, title, content, author, categoryID).Scan(&id)
	if err != nil {
		return types.Post{}, err
	}
	return r.Get(ctx, id)
}

// UpdateIfAuthor applies the non-nil fields of upd to the post, but only when
// the post exists and belongs to author. The ownership check rides in the
// UPDATE's WHERE clause so no window opens between check and write. A zero
// row count means not-found or not-owner; callers cannot tell which.
func (r *PostgresPostRepository) UpdateIfAuthor(ctx context.Context, id int, author string, upd PostUpdate) (types.Post, error) {
	sets := []string{}
	args := []any{}
	if upd.Title != nil {
		args = append(args, *upd.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if upd.Content != nil {
		args = append(args, *upd.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if upd.CategoryID != nil {
		args = append(args, *upd.CategoryID)
		sets = append(sets, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if len(sets) == 0 {
		return types.Post{}, errors.New("store: update with no fields")
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id, author)
	query := fmt.Sprintf(
		"UPDATE posts SET %s WHERE id = $%d AND author = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return types.Post{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, err
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

// DeleteIfAuthor removes the post when it exists and belongs to author,
// with the same compound WHERE clause as UpdateIfAuthor.
func (r *PostgresPostRepository) DeleteIfAuthor(ctx context.Context, id int, author string) error {
	const query = `DELETE FROM posts WHERE id = $1 AND author = $2`
	result, err := r.db.ExecContext(ctx, query, id, author)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgresPost(row *sql.Row) (types.Post, error) {
	var post types.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Author,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Category.ID,
		&post.Category.Name,
		&post.Category.Slug,
		&post.Category.Color,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}
