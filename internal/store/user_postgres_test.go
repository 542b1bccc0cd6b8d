package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserRepositoryDuplicateMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_username_key"})

	repo := NewPostgresUserRepository(db)
	_, err = repo.Create(context.Background(), "alice", "alice@example.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepositoryOtherErrorsPassThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "53300", Message: "too many connections"})

	repo := NewPostgresUserRepository(db)
	_, err = repo.Create(context.Background(), "alice", "alice@example.com", "hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestPostgresPostRepositoryUpdateIfAuthorNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE posts SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresPostRepository(db)
	title := "new title"
	_, err = repo.UpdateIfAuthor(context.Background(), 7, "mallory", PostUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
