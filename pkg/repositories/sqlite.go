package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cbodonnell/fakegame/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the SQLite ledger at path and applies migrations.
// The caller is responsible for calling Close() on the repository.
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	statements, err := migrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range statements {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) RecordTransaction(ctx context.Context, tx models.Transaction) error {
	q := `
	INSERT INTO transactions (id, kind, product_id, detail, timestamp, extra_lives, super_powers, all_maps_unlocked)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, tx.ID, string(tx.Kind), tx.ProductID, tx.Detail, tx.Timestamp, tx.ExtraLives, tx.SuperPowers, tx.AllMapsUnlocked)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	q := `
	SELECT id, kind, product_id, detail, timestamp, extra_lives, super_powers, all_maps_unlocked
	FROM transactions WHERE id = ?;
	`
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	q := `
	SELECT id, kind, product_id, detail, timestamp, extra_lives, super_powers, all_maps_unlocked
	FROM transactions ORDER BY timestamp DESC, rowid DESC LIMIT ?;
	`
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var tx models.Transaction
	var kind string
	if err := row.Scan(&tx.ID, &kind, &tx.ProductID, &tx.Detail, &tx.Timestamp, &tx.ExtraLives, &tx.SuperPowers, &tx.AllMapsUnlocked); err != nil {
		return nil, err
	}
	tx.Kind = models.TransactionKind(kind)
	return &tx, nil
}
