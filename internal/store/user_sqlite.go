package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/titanium/backend/types"
)

// sqliteTimeFormat is how timestamps are stored in sqlite TEXT columns.
const sqliteTimeFormat = time.RFC3339Nano

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// SQLiteUserRepository handles persistence for users on the file-backed
// sqlite store. Semantics match PostgresUserRepository.
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, username, email, passwordHash string) (types.User, error) {
	user := types.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	const query = `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.Format(sqliteTimeFormat),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.User{}, err
	}
	user.ID = int(id)
	return user, nil
}

func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteUserRepository) UpdatePasswordHash(ctx context.Context, id int, newHash string) error {
	const query = `UPDATE users SET password_hash = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, newHash, id)
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

func (r *SQLiteUserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var createdAt string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	user.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt)
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}
