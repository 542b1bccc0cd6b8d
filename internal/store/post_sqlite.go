package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/titanium/backend/types"
)

const sqlitePostColumns = `
	p.id, p.title, p.content, p.author, p.created_at, p.updated_at,
	c.id, c.name, c.slug, c.color`

// SQLitePostRepository handles persistence for posts on sqlite. Semantics
// match PostgresPostRepository; timestamps are stored as RFC 3339 text.
type SQLitePostRepository struct {
	db *sql.DB
}

func NewSQLitePostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{db: db}
}

func (r *SQLitePostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	query := `
		SELECT ` + sqlitePostColumns + `
		FROM posts p
		INNER JOIN categories c ON p.category_id = c.id
		WHERE p.id = ?`

	var post types.Post
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Author,
		&createdAt,
		&updatedAt,
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
	if post.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
		return types.Post{}, err
	}
	if post.UpdatedAt, err = time.Parse(sqliteTimeFormat, updatedAt); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

func (r *SQLitePostRepository) List(ctx context.Context, offset, limit int, categorySlug string) ([]types.Post, error) {
	query := `
		SELECT ` + sqlitePostColumns + `
		FROM posts p
		INNER JOIN categories c ON p.category_id = c.id`
	args := []any{}
	if categorySlug != "" {
		query += ` WHERE c.slug = ? ORDER BY p.id DESC LIMIT ? OFFSET ?`
		args = append(args, categorySlug, limit, offset)
	} else {
		query += ` ORDER BY p.id DESC LIMIT ? OFFSET ?`
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
		var createdAt, updatedAt string
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.Author,
			&createdAt,
			&updatedAt,
			&post.Category.ID,
			&post.Category.Name,
			&post.Category.Slug,
			&post.Category.Color,
		)
		if err != nil {
			return nil, err
		}
		if post.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
			return nil, err
		}
		if post.UpdatedAt, err = time.Parse(sqliteTimeFormat, updatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *SQLitePostRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

func (r *SQLitePostRepository) Create(ctx context.Context, title, content, author string, categoryID int) (types.Post, error) {
	now := time.Now().Format(sqliteTimeFormat)
	const query = `
		INSERT INTO posts (title, content, author, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, title, content, author, categoryID, now, now)
	if err != nil {
		return types.Post{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return types.Post{}, err
	}
	return r.Get(ctx, int(id))
}

func (r *SQLitePostRepository) UpdateIfAuthor(ctx context.Context, id int, author string, upd PostUpdate) (types.Post, error) {
	sets := []string{}
	args := []any{}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *upd.CategoryID)
	}
	if len(sets) == 0 {
		return types.Post{}, errors.New("store: update with no fields")
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().Format(sqliteTimeFormat))

	args = append(args, id, author)
	query := "UPDATE posts SET " + strings.Join(sets, ", ") + " WHERE id = ? AND author = ?"

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

func (r *SQLitePostRepository) DeleteIfAuthor(ctx context.Context, id int, author string) error {
	const query = `DELETE FROM posts WHERE id = ? AND author = ?`
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
