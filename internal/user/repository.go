package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ahinestrog/shoppyglobe/internal/storage"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserName(ctx context.Context, userName string) (*User, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  user_name     TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    TIMESTAMP NOT NULL
);`

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo { return &SQLiteRepo{db: db} }

func (r *SQLiteRepo) Init(ctx context.Context) error {
	return storage.Migrate(ctx, r.db, schema)
}

// Create inserts u, returning ErrAlreadyExists when the user name is taken.
func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users(id,user_name,password_hash,created_at)
		 VALUES(?,?,?,?)
		 ON CONFLICT(user_name) DO NOTHING`, u.ID, u.UserName, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (r *SQLiteRepo) GetByUserName(ctx context.Context, userName string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id,user_name,password_hash,created_at FROM users WHERE user_name=?`, userName)
	u := &User{}
	if err := row.Scan(&u.ID, &u.UserName, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
