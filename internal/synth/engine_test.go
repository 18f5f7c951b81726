package synth

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/models"
)

// --- fakes ---

type fakeSource struct {
	symbols []string
	err     error
}

func (f *fakeSource) Symbols(ctx context.Context) ([]string, error) {
	return f.symbols, f.err
}

type fakeStore struct {
	series    map[string][]models.PricePoint
	failSym string // Append fails for this symbol
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{series: make(map[string][]models.PricePoint)}
}

func (f *fakeStore) Latest(ctx context.Context, symbol string) (*models.PricePoint, error) {
	pts := f.series[symbol]
	if len(pts) == 0 {
		return nil, nil
	}
	p := pts[len(pts)-1]
	return &p, nil
}

func (f *fakeStore) Append(ctx context.Context, symbol string, price float64, ts time.Time) (*models.PricePoint, error) {
	if symbol == f.failSym {
		return nil, errors.New("symbol not in watchlist")
	}
	f.nextID++
	p := models.PricePoint{ID: f.nextID, Symbol: symbol, Price: price, Timestamp: ts}
	f.series[symbol] = append(f.series[symbol], p)
	return &p, nil
}

type fakePublisher struct {
	updates []models.PriceUpdate
}

func (f *fakePublisher) Publish(u models.PriceUpdate) {
	f.updates = append(f.updates, u)
}

func testEngine(src *fakeSource, store *fakeStore, pub *fakePublisher, now time.Time) *Engine {
	var p Publisher
	if pub != nil {
		p = pub
	}
	return NewEngine(src, store, p, Options{
		SeedPrice:      100.00,
		MaxMovePercent: 5,
		Rand:           rand.New(rand.NewSource(42)),
		Now:            func() time.Time { return now },
	})
}

// --- tests ---

func TestNextPrice_Bounded(t *testing.T) {
	e := testEngine(&fakeSource{}, newFakeStore(), nil, time.Now())

	last := 100.00
	for i := 0; i < 10000; i++ {
		next := e.NextPrice(last)
		if next <= 0 {
			t.Fatalf("draw %d: non-positive price %f", i, next)
		}
		move := math.Abs(next-last) / last
		// 0.05 plus a hair of slack for the 2-decimal rounding of the result
		if move > 0.05+0.005/last {
			t.Fatalf("draw %d: move %.4f exceeds 5%% (last=%.2f next=%.2f)", i, move, last, next)
		}
		// two-decimal precision
		cents := next * 100
		if math.Abs(cents-math.Round(cents)) > 1e-6 {
			t.Fatalf("draw %d: price %f not rounded to cents", i, next)
		}
		last = next
	}
}

func TestRunRound_SeedsDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	pub := &fakePublisher{}
	e := testEngine(&fakeSource{symbols: []string{"AAPL"}}, store, pub, now)

	if err := e.RunRound(context.Background()); err != nil {
		t.Fatalf("RunRound: %v", err)
	}

	pts := store.series["AAPL"]
	if len(pts) != 1 {
		t.Fatalf("expected 1 point, got %d", len(pts))
	}
	p := pts[0]
	if p.Price < 95.00 || p.Price > 105.00 {
		t.Fatalf("seeded price %.2f outside ±5%% of 100.00", p.Price)
	}
	want := now.AddDate(0, 0, 1)
	if !p.Timestamp.Equal(want) {
		t.Fatalf("timestamp: got %s, want %s", p.Timestamp, want)
	}
	if len(pub.updates) != 1 || pub.updates[0].Symbol != "AAPL" {
		t.Fatalf("expected one published update for AAPL, got %+v", pub.updates)
	}
}

func TestRunRound_TimestampsAdvanceOneDay(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	e := testEngine(&fakeSource{symbols: []string{"MSFT"}}, store, nil, now)

	for i := 0; i < 30; i++ {
		if err := e.RunRound(context.Background()); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}

	pts := store.series["MSFT"]
	if len(pts) != 30 {
		t.Fatalf("expected 30 points, got %d", len(pts))
	}
	for i, p := range pts {
		want := now.AddDate(0, 0, i+1)
		if !p.Timestamp.Equal(want) {
			t.Fatalf("point %d: timestamp %s, want %s", i, p.Timestamp, want)
		}
		if i > 0 && !pts[i-1].Timestamp.Before(p.Timestamp) {
			t.Fatalf("point %d: timestamps not strictly increasing", i)
		}
	}
}

func TestRunRound_WalkContinuesFromLastPrice(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	e := testEngine(&fakeSource{symbols: []string{"TSLA"}}, store, nil, now)

	for i := 0; i < 100; i++ {
		if err := e.RunRound(context.Background()); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}

	pts := store.series["TSLA"]
	for i := 1; i < len(pts); i++ {
		move := math.Abs(pts[i].Price-pts[i-1].Price) / pts[i-1].Price
		if move > 0.0501 {
			t.Fatalf("point %d: move %.4f from previous point exceeds bound", i, move)
		}
	}
}

func TestRunRound_FailureIsolation(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.failSym = "GONE"
	pub := &fakePublisher{}
	e := testEngine(&fakeSource{symbols: []string{"AAPL", "GONE", "MSFT"}}, store, pub, now)

	if err := e.RunRound(context.Background()); err != nil {
		t.Fatalf("RunRound should not fail on a per-symbol error: %v", err)
	}

	if len(store.series["AAPL"]) != 1 || len(store.series["MSFT"]) != 1 {
		t.Fatal("expected points for the healthy symbols")
	}
	if len(store.series["GONE"]) != 0 {
		t.Fatal("expected no point for the failing symbol")
	}
	if len(pub.updates) != 2 {
		t.Fatalf("expected 2 published updates, got %d", len(pub.updates))
	}
}

func TestRunRound_ListFailurePropagates(t *testing.T) {
	e := testEngine(&fakeSource{err: errors.New("db down")}, newFakeStore(), nil, time.Now())
	if err := e.RunRound(context.Background()); err == nil {
		t.Fatal("expected error when the symbol listing fails")
	}
}
