package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository serializes access to its connection, which is shared
// by the ledger worker and the API.
type PostgresRepository struct {
	lock sync.Mutex
	conn *pgx.Conn
}

// NewPostgresRepository connects to the Postgres ledger and applies migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	log.Info("Connected to %s as %s", database, username)

	statements, err := migrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for i, migration := range statements {
		if _, err := conn.Exec(ctx, migration); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) RecordTransaction(ctx context.Context, tx models.Transaction) error {
	q := `
	INSERT INTO transactions (id, kind, product_id, detail, timestamp, extra_lives, super_powers, all_maps_unlocked)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	r.lock.Lock()
	defer r.lock.Unlock()
	_, err := r.conn.Exec(ctx, q, tx.ID, string(tx.Kind), tx.ProductID, tx.Detail, tx.Timestamp, tx.ExtraLives, tx.SuperPowers, tx.AllMapsUnlocked)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	q := `
	SELECT id, kind, product_id, detail, timestamp, extra_lives, super_powers, all_maps_unlocked
	FROM transactions WHERE id = $1;
	`
	r.lock.Lock()
	defer r.lock.Unlock()
	tx, err := scanTransaction(r.conn.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	q := `
	SELECT id, kind, product_id, detail, timestamp, extra_lives, super_powers, all_maps_unlocked
	FROM transactions ORDER BY timestamp DESC LIMIT $1;
	`
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rows, err := r.conn.Query(ctx, q, limitArg)
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
