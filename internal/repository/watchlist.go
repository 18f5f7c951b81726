package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/models"
)

type WatchlistRepo struct {
	pool *pgxpool.Pool
}

func NewWatchlistRepo(pool *pgxpool.Pool) *WatchlistRepo {
	return &WatchlistRepo{pool: pool}
}

func (r *WatchlistRepo) List(ctx context.Context) ([]models.TrackedStock, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, stock_symbol, short_name, data, created_at
		 FROM watchlist ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStocks(rows)
}

// Symbols returns just the tracked tickers, in insertion order. This is the
// iteration set for a synthesis round.
func (r *WatchlistRepo) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT stock_symbol FROM watchlist ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

func (r *WatchlistRepo) Exists(ctx context.Context, symbol string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM watchlist WHERE stock_symbol = $1)`,
		symbol,
	).Scan(&exists)
	return exists, err
}

func (r *WatchlistRepo) Add(ctx context.Context, symbol, shortName string, snapshot json.RawMessage) (*models.TrackedStock, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO watchlist (stock_symbol, short_name, data)
		 VALUES ($1, $2, $3)
		 RETURNING id, stock_symbol, short_name, data, created_at`,
		symbol, shortName, snapshot,
	)
	s, err := scanStock(row)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, ErrDuplicateSymbol
		}
		return nil, err
	}
	return s, nil
}

// Remove deletes a stock and its entire price history. History goes first so
// a watchlist row never outlives its points with a dangling reference; both
// deletes run in one transaction. Returns whether a watchlist row existed.
func (r *WatchlistRepo) Remove(ctx context.Context, symbol string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM stockprices WHERE stock_symbol = $1`, symbol,
	); err != nil {
		return false, fmt.Errorf("delete price history: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM watchlist WHERE stock_symbol = $1`, symbol,
	)
	if err != nil {
		return false, fmt.Errorf("delete watchlist row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// --- scan helpers ---

func scanStock(row scannable) (*models.TrackedStock, error) {
	var s models.TrackedStock
	err := row.Scan(&s.ID, &s.Symbol, &s.ShortName, &s.Data, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectStocks(rows rowsIter) ([]models.TrackedStock, error) {
	var out []models.TrackedStock
	for rows.Next() {
		var s models.TrackedStock
		if err := rows.Scan(&s.ID, &s.Symbol, &s.ShortName, &s.Data, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
