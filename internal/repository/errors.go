package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateSymbol is returned by Add when the symbol is already tracked.
	ErrDuplicateSymbol = errors.New("symbol already in watchlist")

	// ErrUntrackedSymbol is returned by Append when the symbol has no
	// watchlist row (including when it was removed mid-flight).
	ErrUntrackedSymbol = errors.New("symbol not in watchlist")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
