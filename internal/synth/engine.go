package synth

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/models"
)

// SymbolSource yields the set of tracked tickers for a round.
type SymbolSource interface {
	Symbols(ctx context.Context) ([]string, error)
}

// HistoryStore is the slice of the price repository the engine needs.
type HistoryStore interface {
	Latest(ctx context.Context, symbol string) (*models.PricePoint, error)
	Append(ctx context.Context, symbol string, price float64, ts time.Time) (*models.PricePoint, error)
}

// Publisher receives every appended point. A no-op publisher is fine.
type Publisher interface {
	Publish(models.PriceUpdate)
}

type Options struct {
	SeedPrice      float64    // price assumed for a symbol with no history
	MaxMovePercent float64    // walk bound, in percent
	Rand           *rand.Rand // defaults to a time-seeded generator
	Now            func() time.Time
}

// Engine synthesizes one new price point per tracked symbol per round.
// Prices follow a bounded random walk from the last known value; timestamps
// advance by one calendar day per point regardless of the real cadence, so a
// short scheduler interval fills out a daily series quickly.
type Engine struct {
	watchlist SymbolSource
	prices    HistoryStore
	pub       Publisher

	seedPrice float64
	maxMove   float64
	rng       *rand.Rand
	now       func() time.Time
}

func NewEngine(watchlist SymbolSource, prices HistoryStore, pub Publisher, opts Options) *Engine {
	if opts.SeedPrice <= 0 {
		opts.SeedPrice = 100.00
	}
	if opts.MaxMovePercent <= 0 {
		opts.MaxMovePercent = 5
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		watchlist: watchlist,
		prices:    prices,
		pub:       pub,
		seedPrice: opts.SeedPrice,
		maxMove:   opts.MaxMovePercent,
		rng:       opts.Rand,
		now:       opts.Now,
	}
}

// RunRound synthesizes one point for every tracked symbol. Each symbol is an
// independent unit of work: a failed append (e.g. the symbol was removed
// mid-round) is logged and the round moves on. The error return covers only
// the symbol listing itself.
func (e *Engine) RunRound(ctx context.Context) error {
	symbols, err := e.watchlist.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	for _, symbol := range symbols {
		point, err := e.synthesize(ctx, symbol)
		if err != nil {
			fmt.Printf("[SYNTH] %s: %v — skipping until next round\n", symbol, err)
			continue
		}
		fmt.Printf("[SYNTH] %s: $%.2f @ %s\n", point.Symbol, point.Price, point.Timestamp.Format("2006-01-02"))

		if e.pub != nil {
			e.pub.Publish(models.PriceUpdate{
				Symbol:    point.Symbol,
				Price:     point.Price,
				Timestamp: point.Timestamp,
			})
		}
	}
	return nil
}

func (e *Engine) synthesize(ctx context.Context, symbol string) (*models.PricePoint, error) {
	last, err := e.prices.Latest(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}

	lastPrice := e.seedPrice
	lastTimestamp := e.now()
	if last != nil {
		lastPrice = last.Price
		lastTimestamp = last.Timestamp
	}

	newPrice := e.NextPrice(lastPrice)
	newTimestamp := lastTimestamp.AddDate(0, 0, 1)

	point, err := e.prices.Append(ctx, symbol, newPrice, newTimestamp)
	if err != nil {
		return nil, fmt.Errorf("append: %w", err)
	}
	return point, nil
}

// NextPrice draws a uniform move in [-maxMove%, +maxMove%] and applies it to
// last, rounded to two decimals.
func (e *Engine) NextPrice(last float64) float64 {
	changePercent := (e.rng.Float64()*2 - 1) * e.maxMove / 100

	next := decimal.NewFromFloat(last).
		Mul(decimal.NewFromFloat(1 + changePercent)).
		Round(2)
	f, _ := next.Float64()
	return f
}
