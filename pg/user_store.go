package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
)

// UserStore stores users in a PostgreSQL database. Profiles and favorites are
// kept as a JSON document next to the columns used for querying.
type UserStore struct {
	DB *sql.DB
}

// Init sets up the database schema and creates indices.
func (u *UserStore) Init(ctx context.Context) error {
	const op errors.Op = "UserStore.Init"

	_, err := u.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS users (
		sequence    SERIAL        NOT NULL,
		id          TEXT          PRIMARY KEY,
		role        TEXT          NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ   NOT NULL DEFAULT now(),
		data        JSONB         NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS users_role_idx ON users (role, created_at DESC);
	`)
	if err != nil {
		return errors.E(op, pgErr(err))
	}

	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Get retrieves a User by ID.
func (u *UserStore) Get(ctx context.Context, id freedome.UserID) (freedome.User, error) {
	return getUser(ctx, u.DB, id, "")
}

func getUser(ctx context.Context, q queryer, id freedome.UserID, suffix string) (freedome.User, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, role, created_at, data
		FROM users
		WHERE id = $1 `+suffix, id)
	return scanUser(row)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (freedome.User, error) {
	var (
		user      freedome.User
		id        string
		role      string
		createdAt time.Time
		data      []byte
	)
	if err := row.Scan(&id, &role, &createdAt, &data); err != nil {
		return user, pgErr(err)
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return user, errors.E(errors.Internal, err)
	}
	user.ID = freedome.UserID(id)
	user.Role = freedome.Role(role)
	user.CreatedAt = createdAt.UTC()
	if user.Favorites == nil {
		user.Favorites = freedome.Favorites{}
	}
	return user, nil
}

// Create inserts a new user.
func (u *UserStore) Create(ctx context.Context, user freedome.User) (freedome.User, error) {
	const op errors.Op = "UserStore.Create"

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	data, err := json.Marshal(user)
	if err != nil {
		return user, errors.E(op, errors.Internal, err)
	}

	_, err = u.DB.ExecContext(ctx, `
		INSERT INTO users (id, role, created_at, data)
		VALUES ($1, $2, $3, $4)`,
		user.ID, user.Role, user.CreatedAt, data)
	if err != nil {
		return user, errors.E(op, pgErr(err))
	}

	return u.Get(ctx, user.ID)
}

// Update locks the user's row, applies fn and writes the result back.
func (u *UserStore) Update(ctx context.Context, id freedome.UserID, fn func(*freedome.User) error) (freedome.User, error) {
	var user freedome.User

	err := withTx(ctx, u.DB, func(tx *sql.Tx) error {
		var err error
		user, err = getUser(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}

		if err := fn(&user); err != nil {
			return err
		}
		user.ID = id

		data, err := json.Marshal(user)
		if err != nil {
			return errors.E(errors.Internal, err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET role = $2, data = $3
			WHERE id = $1`,
			id, user.Role, data)
		return pgErr(err)
	})
	if err != nil {
		return freedome.User{}, err
	}

	return user, nil
}

// Delete removes a user. Rows owned by a business are removed with it.
func (u *UserStore) Delete(ctx context.Context, id freedome.UserID) error {
	res, err := u.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return pgErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.E(errors.NotExist)
	}
	return nil
}

// ListBusinesses lists the business users, newest first.
func (u *UserStore) ListBusinesses(ctx context.Context) ([]freedome.User, error) {
	rows, err := u.DB.QueryContext(ctx, `
		SELECT id, role, created_at, data
		FROM users
		WHERE role = $1
		ORDER BY created_at DESC, sequence DESC`, freedome.RoleBusiness)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	users := []freedome.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err)
	}

	return users, nil
}
