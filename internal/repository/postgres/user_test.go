package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cacart/internal/model"
)

var userRowColumns = []string{"id", "email", "password_hash", "is_anonymous", "created_at", "updated_at", "deleted_at"}

func TestUserRepository_GetByEmail(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      model.User
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 AND deleted_at IS NULL")).
					WithArgs("a@b.co").
					WillReturnRows(pgxmock.NewRows(userRowColumns).
						AddRow(id, "a@b.co", "hash", false, now, now, nil))
			},
			want: model.User{ID: id, Email: "a@b.co", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
					WithArgs("x@b.co").
					WillReturnRows(pgxmock.NewRows(userRowColumns))
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			email := "a@b.co"
			if tt.wantErr != nil {
				email = "x@b.co"
			}
			got, err := repo.GetByEmail(context.Background(), email)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(id, "", "", true, now, now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))

	repo := NewUserRepository(mock)

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.IsAnonymous)
	assert.Empty(t, got.Email)

	_, err = repo.GetByID(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotErrorIs(t, err, model.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now()

	t.Run("password user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := model.User{ID: uuid.New(), Email: "a@b.co", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), false, now, now).
			WillReturnRows(pgxmock.NewRows(userRowColumns).
				AddRow(user.ID, "a@b.co", "hash", false, now, now, nil))

		saved, err := NewUserRepository(mock).Create(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, user, saved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		_, err = NewUserRepository(mock).Create(context.Background(), model.User{ID: uuid.New(), Email: "a@b.co"})
		require.ErrorIs(t, err, model.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNullIfEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("a"))
	assert.Equal(t, "a", *nullIfEmpty("a"))
}
