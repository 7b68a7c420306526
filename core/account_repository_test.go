package core

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func userProfileRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "password_hash", "token",
		"id", "user_id", "email", "first_name", "last_name",
	})
}

func TestPgAccountStore_FindUserByUsername(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *UserWithProfile
		wantErr   error
	}{
		{
			name:     "found with profile",
			username: "alice",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := userProfileRows().
					AddRow(int64(1), "alice", "$2a$10$hash", strPtr("tok-1"),
						int64(7), int64(1), "alice@x.com", "Alice", strPtr("Smith"))
				mock.ExpectQuery(`SELECT .+ FROM users u JOIN profiles p`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
			want: &UserWithProfile{
				UserRecord: UserRecord{ID: 1, Username: "alice", PasswordHash: "$2a$10$hash", Token: strPtr("tok-1")},
				Profile:    ProfileRecord{ID: 7, UserID: 1, Email: "alice@x.com", FirstName: "Alice", LastName: strPtr("Smith")},
			},
		},
		{
			name:     "not found",
			username: "nobody",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users u JOIN profiles p`).
					WithArgs("nobody").
					WillReturnRows(userProfileRows())
			},
			wantErr: ErrNotFound,
		},
		{
			name:     "database error",
			username: "alice",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users u JOIN profiles p`).
					WithArgs("alice").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPgAccountStore(mock)
			got, err := repo.FindUserByUsername(context.Background(), tt.username)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPgAccountStore_FindProfileByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "user_id", "email", "first_name", "last_name"}).
			AddRow(int64(7), int64(1), "alice@x.com", "Alice", (*string)(nil))
		mock.ExpectQuery(`SELECT id, user_id, email, first_name, last_name FROM profiles`).
			WithArgs("alice@x.com").
			WillReturnRows(rows)

		repo := NewPgAccountStore(mock)
		got, err := repo.FindProfileByEmail(context.Background(), "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.FirstName)
		assert.Nil(t, got.LastName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, user_id, email, first_name, last_name FROM profiles`).
			WithArgs("nobody@x.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "email", "first_name", "last_name"}))

		repo := NewPgAccountStore(mock)
		_, err = repo.FindProfileByEmail(context.Background(), "nobody@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgAccountStore_CreateUserWithProfile(t *testing.T) {
	t.Run("commits user and profile together", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "$2a$10$hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
		mock.ExpectExec(`INSERT INTO profiles`).
			WithArgs(int64(42), "alice@x.com", "Alice", (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		repo := NewPgAccountStore(mock)
		id, err := repo.CreateUserWithProfile(context.Background(), "alice", "$2a$10$hash", "alice@x.com", "Alice", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when profile insert fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "$2a$10$hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
		mock.ExpectExec(`INSERT INTO profiles`).
			WithArgs(int64(42), "alice@x.com", "Alice", (*string)(nil)).
			WillReturnError(errors.New("duplicate key value violates unique constraint"))
		mock.ExpectRollback()

		repo := NewPgAccountStore(mock)
		_, err = repo.CreateUserWithProfile(context.Background(), "alice", "$2a$10$hash", "alice@x.com", "Alice", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unique constraint")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username rejected by constraint", func(t *testing.T) {
		// Two racing registrations can both pass the advisory existence
		// check; the second insert must then fail on the unique index.
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "$2a$10$hash").
			WillReturnError(errors.New(`duplicate key value violates unique constraint "users_username_key"`))
		mock.ExpectRollback()

		repo := NewPgAccountStore(mock)
		_, err = repo.CreateUserWithProfile(context.Background(), "alice", "$2a$10$hash", "alice2@x.com", "Alice", nil)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgAccountStore_UpdateUserToken(t *testing.T) {
	t.Run("updates token", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET token`).
			WithArgs("tok-2", int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPgAccountStore(mock)
		require.NoError(t, repo.UpdateUserToken(context.Background(), 1, "tok-2"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET token`).
			WithArgs("tok-2", int64(99)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewPgAccountStore(mock)
		assert.ErrorIs(t, repo.UpdateUserToken(context.Background(), 99, "tok-2"), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgAccountStore_FindUserByToken(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "token"}).
			AddRow(int64(1), "alice", "$2a$10$hash", strPtr("tok-1"))
		mock.ExpectQuery(`SELECT id, username, password_hash, token FROM users WHERE token`).
			WithArgs("tok-1").
			WillReturnRows(rows)

		repo := NewPgAccountStore(mock)
		got, err := repo.FindUserByToken(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, username, password_hash, token FROM users WHERE token`).
			WithArgs("stale").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "token"}))

		repo := NewPgAccountStore(mock)
		_, err = repo.FindUserByToken(context.Background(), "stale")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgAccountStore_FindUserWithProfileByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := userProfileRows().
		AddRow(int64(1), "alice", "$2a$10$hash", strPtr("tok-1"),
			int64(7), int64(1), "alice@x.com", "Alice", (*string)(nil))
	mock.ExpectQuery(`SELECT .+ FROM users u JOIN profiles p`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	repo := NewPgAccountStore(mock)
	got, err := repo.FindUserWithProfileByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice ", got.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}
