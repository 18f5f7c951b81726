package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/external"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/repository"
)

// QuoteProvider is the upstream market-data lookup the add/live-quote routes
// depend on.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, ticker string) (*external.Quote, error)
}

type Server struct {
	pool       *pgxpool.Pool
	watchlist  *repository.WatchlistRepo
	prices     *repository.PriceRepo
	quotes     QuoteProvider
	httpServer *http.Server
	apiKey     string
}

func NewServer(pool *pgxpool.Pool, quotes QuoteProvider, streamHandler http.Handler, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		pool:      pool,
		watchlist: repository.NewWatchlistRepo(pool),
		prices:    repository.NewPriceRepo(pool),
		quotes:    quotes,
		apiKey:    apiKey,
	}

	mux := http.NewServeMux()

	// Watchlist routes
	mux.HandleFunc("GET /api/watchlist", s.handleWatchlist)
	mux.HandleFunc("POST /api/watchlist", s.handleAddStock)
	mux.HandleFunc("DELETE /api/watchlist/{ticker}", s.handleRemoveStock)

	// Stock routes
	mux.HandleFunc("GET /api/stocks/priceData/{ticker}", s.handlePriceData)
	mux.HandleFunc("GET /api/stocks/{ticker}", s.handleLiveQuote)

	// Live price stream (no auth: browsers cannot set ws headers)
	if streamHandler != nil {
		mux.Handle("GET /ws", streamHandler)
	}

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" || r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
