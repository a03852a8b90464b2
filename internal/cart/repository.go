package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ahinestrog/shoppyglobe/internal/storage"
)

type Repository interface {
	Get(ctx context.Context, id string) (*Cart, error)
	// Create inserts a new cart at version 1. ErrVersionConflict if the id
	// is already taken.
	Create(ctx context.Context, c *Cart) error
	// Save persists c if the stored version still equals c.Version and bumps
	// it, otherwise ErrVersionConflict.
	Save(ctx context.Context, c *Cart) error
}

const schema = `
CREATE TABLE IF NOT EXISTS carts (
  id           TEXT PRIMARY KEY,
  version      INTEGER NOT NULL,
  created_unix INTEGER NOT NULL,
  updated_unix INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS cart_items (
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  position   INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  qty        INTEGER NOT NULL CHECK (qty >= 1),
  PRIMARY KEY (cart_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_pos ON cart_items(cart_id, position);
`

type SQLiteRepo struct{ db *sql.DB }

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo { return &SQLiteRepo{db: db} }

func (r *SQLiteRepo) Init(ctx context.Context) error {
	return storage.Migrate(ctx, r.db, schema)
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (*Cart, error) {
	c := newCart(id)
	err := r.db.QueryRowContext(ctx, `SELECT version FROM carts WHERE id=?`, id).Scan(&c.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, qty FROM cart_items
		WHERE cart_id=? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

func (r *SQLiteRepo) Create(ctx context.Context, c *Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO carts(id, version, created_unix, updated_unix)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(id) DO NOTHING`, c.ID, now, now)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrVersionConflict
	}

	if err := insertItems(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.Version = 1
	return nil
}

func (r *SQLiteRepo) Save(ctx context.Context, c *Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE carts SET version = version + 1, updated_unix = ?
		WHERE id = ? AND version = ?`, time.Now().Unix(), c.ID, c.Version)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id=?`, c.ID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.Version++
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, c *Cart) error {
	if len(c.Items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cart_items(cart_id, position, product_id, qty)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, it := range c.Items {
		if _, err := stmt.ExecContext(ctx, c.ID, pos, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}
