package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahinestrog/shoppyglobe/internal/storage"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	InsertMany(ctx context.Context, products []Product) error
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
  seq          INTEGER PRIMARY KEY AUTOINCREMENT,
  id           TEXT NOT NULL UNIQUE,
  doc          TEXT NOT NULL,
  created_unix INTEGER NOT NULL
);
`

// SQLiteRepo keeps each product as a JSON document keyed by id; seq keeps
// insertion order for listings.
type SQLiteRepo struct{ db *sql.DB }

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo { return &SQLiteRepo{db: db} }

func (r *SQLiteRepo) Init(ctx context.Context) error {
	return storage.Migrate(ctx, r.db, schema)
}

func (r *SQLiteRepo) Count(ctx context.Context) (int64, error) {
	var c int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM products`).Scan(&c)
	return c, err
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM products ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p Product
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (*Product, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM products WHERE id=?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p Product
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &p, nil
}

func (r *SQLiteRepo) InsertMany(ctx context.Context, products []Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products(id, doc, created_unix) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i := range products {
		doc, err := json.Marshal(products[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, products[i].ID, string(doc), now); err != nil {
			return fmt.Errorf("insert product %s: %w", products[i].ID, err)
		}
	}
	return tx.Commit()
}
