package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/models"
)

type PriceRepo struct {
	pool *pgxpool.Pool
}

func NewPriceRepo(pool *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{pool: pool}
}

// Latest returns the most recent point for a symbol, or nil if the symbol
// has no history yet.
func (r *PriceRepo) Latest(ctx context.Context, symbol string) (*models.PricePoint, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, stock_symbol, price, timestamp, created_at
		 FROM stockprices WHERE stock_symbol = $1
		 ORDER BY timestamp DESC LIMIT 1`,
		symbol,
	)
	p, err := scanPrice(row)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Append inserts a new point. The symbol must be tracked; the foreign key
// rejects the insert otherwise, which is what keeps a remove racing an
// in-flight append from leaving orphaned points.
func (r *PriceRepo) Append(ctx context.Context, symbol string, price float64, ts time.Time) (*models.PricePoint, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO stockprices (stock_symbol, price, timestamp)
		 VALUES ($1, $2, $3)
		 RETURNING id, stock_symbol, price, timestamp, created_at`,
		symbol, price, ts,
	)
	p, err := scanPrice(row)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return nil, ErrUntrackedSymbol
		}
		return nil, err
	}
	return p, nil
}

// Range returns the full series for a symbol, ascending by timestamp.
func (r *PriceRepo) Range(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, stock_symbol, price, timestamp, created_at
		 FROM stockprices WHERE stock_symbol = $1
		 ORDER BY timestamp ASC`,
		symbol,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrices(rows)
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPrice(row scannable) (*models.PricePoint, error) {
	var p models.PricePoint
	err := row.Scan(&p.ID, &p.Symbol, &p.Price, &p.Timestamp, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPrices(rows rowsIter) ([]models.PricePoint, error) {
	var out []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Price, &p.Timestamp, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
