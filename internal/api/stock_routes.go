package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/external"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/repository"
)

type watchlistEntryJSON struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"short_name"`
}

type pricePointJSON struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// handleLiveQuote passes the provider snapshot through verbatim.
func (s *Server) handleLiveQuote(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	quote, err := s.quotes.FetchQuote(r.Context(), ticker)
	if err != nil {
		fmt.Printf("Error fetching quote for %s: %v\n", ticker, err)
		writeError(w, http.StatusBadGateway, "quote provider unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(quote.Raw)
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.watchlist.List(r.Context())
	if err != nil {
		fmt.Printf("Error fetching watchlist: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch watchlist")
		return
	}

	out := make([]watchlistEntryJSON, len(stocks))
	for i, st := range stocks {
		out[i] = watchlistEntryJSON{Symbol: st.Symbol, ShortName: st.ShortName}
	}
	writeJSON(w, http.StatusOK, out)
}

type addStockRequest struct {
	Ticker string `json:"ticker"`
}

type addStockResponse struct {
	Message string             `json:"message"`
	Stock   watchlistEntryJSON `json:"stock"`
}

// handleAddStock validates the ticker against the quote provider before
// tracking it; the symbol stored is the provider-normalized one, and the
// full quote payload is kept as an opaque snapshot.
func (s *Server) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	ctx := r.Context()

	quote, err := s.quotes.FetchQuote(ctx, req.Ticker)
	if err != nil {
		if errors.Is(err, external.ErrQuoteUnavailable) {
			writeError(w, http.StatusNotFound, "stock not found")
			return
		}
		fmt.Printf("Error fetching quote for %s: %v\n", req.Ticker, err)
		writeError(w, http.StatusBadGateway, "quote provider unavailable")
		return
	}

	stock, err := s.watchlist.Add(ctx, quote.Symbol, quote.ShortName, quote.Raw)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSymbol) {
			writeError(w, http.StatusConflict, "stock already in watchlist")
			return
		}
		fmt.Printf("Error adding stock %s: %v\n", quote.Symbol, err)
		writeError(w, http.StatusInternalServerError, "failed to add stock")
		return
	}

	writeJSON(w, http.StatusCreated, addStockResponse{
		Message: "Stock added to watchlist",
		Stock:   watchlistEntryJSON{Symbol: stock.Symbol, ShortName: stock.ShortName},
	})
}

func (s *Server) handleRemoveStock(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))

	removed, err := s.watchlist.Remove(r.Context(), ticker)
	if err != nil {
		fmt.Printf("Error removing stock %s: %v\n", ticker, err)
		writeError(w, http.StatusInternalServerError, "failed to remove stock")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "stock not found in watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Stock removed from the watchlist"})
}

func (s *Server) handlePriceData(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	ctx := r.Context()

	tracked, err := s.watchlist.Exists(ctx, ticker)
	if err != nil {
		fmt.Printf("Error checking watchlist for %s: %v\n", ticker, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch price data")
		return
	}
	if !tracked {
		writeError(w, http.StatusNotFound, "stock not found in watchlist")
		return
	}

	points, err := s.prices.Range(ctx, ticker)
	if err != nil {
		fmt.Printf("Error fetching price data for %s: %v\n", ticker, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch price data")
		return
	}

	out := make([]pricePointJSON, len(points))
	for i, p := range points {
		out[i] = pricePointJSON{Price: p.Price, Timestamp: p.Timestamp}
	}
	writeJSON(w, http.StatusOK, out)
}
