// Package sqlite implements the transaction store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"

	_ "modernc.org/sqlite"
)

// Store persists transactions and categories in a single SQLite database.
// SQLite serializes writers, and category updates run inside one
// transaction so the existence check and the update are atomic.
type Store struct {
	db *sql.DB
}

var _ store.TransactionStore = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragma rides the DSN so every pooled connection enforces
	// foreign keys, not just the first one.
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	var categoryID sql.NullInt64
	if tx.CategoryID != nil {
		categoryID = sql.NullInt64{Int64: *tx.CategoryID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (date, description, amount_cents, category_id) VALUES (?, ?, ?, ?)`,
		tx.Date.ISO(), tx.Description, tx.Amount.Cents, categoryID)
	if err != nil {
		if isForeignKeyError(err) {
			return 0, store.ErrInvalidReference
		}
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date, description, amount_cents, category_id FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, opts store.ListOptions) ([]core.Transaction, error) {
	query := `SELECT id, date, description, amount_cents, category_id FROM transactions`
	var args []any
	if opts.CategoryID != nil {
		query += ` WHERE category_id = ?`
		args = append(args, *opts.CategoryID)
	}
	query += ` ORDER BY id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	} else if opts.Skip > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		query += ` LIMIT -1`
	}
	if opts.Skip > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Skip)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateTransactionCategory(ctx context.Context, id int64, categoryID *int64) (core.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer dbTx.Rollback()

	if categoryID != nil {
		var exists int
		err := dbTx.QueryRowContext(ctx, `SELECT COUNT(1) FROM categories WHERE id = ?`, *categoryID).Scan(&exists)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("check category: %w", err)
		}
		if exists == 0 {
			return core.Transaction{}, store.ErrInvalidReference
		}
	}

	var value sql.NullInt64
	if categoryID != nil {
		value = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	res, err := dbTx.ExecContext(ctx, `UPDATE transactions SET category_id = ? WHERE id = ?`, value, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, store.ErrNotFound
	}

	row := dbTx.QueryRowContext(ctx,
		`SELECT id, date, description, amount_cents, category_id FROM transactions WHERE id = ?`, id)
	updated, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("reread transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, keywords FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var keywords string
		if err := rows.Scan(&c.ID, &c.Name, &keywords); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Keywords = splitKeywords(keywords)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, name string, keywords []string) (core.Category, error) {
	name = strings.TrimSpace(name)
	c := core.Category{Name: name, Keywords: lowerKeywords(keywords)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Category{}, fmt.Errorf("begin create category: %w", err)
	}
	defer dbTx.Rollback()

	var exists int
	if err := dbTx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM categories WHERE name = ? COLLATE NOCASE`, name).Scan(&exists); err != nil {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if exists > 0 {
		return core.Category{}, store.ErrDuplicateName
	}

	res, err := dbTx.ExecContext(ctx,
		`INSERT INTO categories (name, keywords) VALUES (?, ?)`, name, strings.Join(c.Keywords, ","))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("last insert id: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return core.Category{}, fmt.Errorf("commit category: %w", err)
	}

	c.ID = id
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		dateStr    string
		categoryID sql.NullInt64
	)
	if err := row.Scan(&tx.ID, &dateStr, &tx.Description, &tx.Amount.Cents, &categoryID); err != nil {
		return core.Transaction{}, err
	}
	y, m, d, err := parseISODate(dateStr)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = core.NewDate(y, m, d)
	if categoryID.Valid {
		tx.CategoryID = &categoryID.Int64
	}
	return tx, nil
}

func parseISODate(s string) (year, month, day int, err error) {
	if _, err = fmt.Sscanf(s, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return 0, 0, 0, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return year, month, day, nil
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func lowerKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY")
}
