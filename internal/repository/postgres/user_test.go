package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/identity-server/internal/model"
)

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewConnectionFromDB(db, time.Second), mock
}

var userRowColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
		want    model.User
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("a@x.com").
					WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(id.String(), "A", "a@x.com", "digest", now, now))
			},
			want: model.User{ID: id, Name: "A", Email: "a@x.com", PasswordHash: "digest", CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "not found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("a@x.com").
					WillReturnRows(sqlmock.NewRows(userRowColumns))
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMockConnection(t)
			tt.setup(mock)

			got, err := NewUserRepository(conn).GetByEmail(ctx, "a@x.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_DriverError(t *testing.T) {
	conn, mock := newMockConnection(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))

	_, err := NewUserRepository(conn).GetByID(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := model.User{ID: uuid.New(), Name: "A", Email: "a@x.com", PasswordHash: "digest", CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(user.ID.String(), user.Name, user.Email, user.PasswordHash, now, now))

		saved, err := NewUserRepository(conn).Create(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, user, saved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := NewUserRepository(conn).Create(ctx, user)
		assert.ErrorIs(t, err, model.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateName(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectQuery(`UPDATE users SET name = \$2, updated_at = \$3`).
			WithArgs(id, "B", now).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(id.String(), "B", "a@x.com", "digest", now, now))

		user, err := NewUserRepository(conn).UpdateName(ctx, id, "B", now)
		require.NoError(t, err)
		assert.Equal(t, "B", user.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectQuery(`UPDATE users`).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := NewUserRepository(conn).UpdateName(ctx, id, "B", now)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
