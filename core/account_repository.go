package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface is the subset of pgxpool.Pool the repository needs. Keeping it
// narrow lets pgxmock stand in for the pool in tests.
type poolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgAccountStore implements AccountStore using PostgreSQL.
type PgAccountStore struct {
	db poolIface
}

func NewPgAccountStore(db poolIface) *PgAccountStore {
	return &PgAccountStore{db: db}
}

const userWithProfileColumns = `u.id, u.username, u.password_hash, u.token,
       p.id, p.user_id, p.email, p.first_name, p.last_name`

func scanUserWithProfile(row pgx.Row) (*UserWithProfile, error) {
	var u UserWithProfile
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Token,
		&u.Profile.ID, &u.Profile.UserID, &u.Profile.Email,
		&u.Profile.FirstName, &u.Profile.LastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgAccountStore) FindUserByUsername(ctx context.Context, username string) (*UserWithProfile, error) {
	const q = `SELECT ` + userWithProfileColumns + `
		FROM users u JOIN profiles p ON p.user_id = u.id
		WHERE u.username = $1`
	return scanUserWithProfile(r.db.QueryRow(ctx, q, username))
}

func (r *PgAccountStore) FindProfileByEmail(ctx context.Context, email string) (*ProfileRecord, error) {
	const q = `SELECT id, user_id, email, first_name, last_name FROM profiles WHERE email = $1`
	var p ProfileRecord
	err := r.db.QueryRow(ctx, q, email).Scan(&p.ID, &p.UserID, &p.Email, &p.FirstName, &p.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateUserWithProfile inserts the user and its profile in a single
// transaction; a failed profile insert rolls the user back too.
func (r *PgAccountStore) CreateUserWithProfile(ctx context.Context, username, passwordHash, email, firstName string, lastName *string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	const insertUser = `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRow(ctx, insertUser, username, passwordHash).Scan(&id); err != nil {
		return 0, err
	}

	const insertProfile = `INSERT INTO profiles (user_id, email, first_name, last_name) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertProfile, id, email, firstName, lastName); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PgAccountStore) UpdateUserToken(ctx context.Context, userID int64, token string) error {
	const q = `UPDATE users SET token = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, q, token, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgAccountStore) FindUserByToken(ctx context.Context, token string) (*UserRecord, error) {
	const q = `SELECT id, username, password_hash, token FROM users WHERE token = $1`
	var u UserRecord
	err := r.db.QueryRow(ctx, q, token).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgAccountStore) FindUserWithProfileByID(ctx context.Context, id int64) (*UserWithProfile, error) {
	const q = `SELECT ` + userWithProfileColumns + `
		FROM users u JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1`
	return scanUserWithProfile(r.db.QueryRow(ctx, q, id))
}
