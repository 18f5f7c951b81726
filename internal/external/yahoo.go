package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/httputil"
)

const yahooQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s"

// ErrQuoteUnavailable covers every provider-side failure: unknown ticker,
// network error, rate limit. Yahoo does not reliably distinguish them, so
// neither do we — inspect the wrapped message for details.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Quote is one provider snapshot. Raw is the untouched provider payload for
// the symbol; it is persisted verbatim on the watchlist row and never parsed
// again by the backend.
type Quote struct {
	Symbol    string
	ShortName string
	Price     float64
	Raw       json.RawMessage
}

type YahooClient struct {
	httpClient *http.Client
	retry      httputil.RetryConfig
	baseURL    string
}

func NewYahooClient() *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
		baseURL: yahooQuoteURL,
	}
}

// yahooQuoteResponse mirrors the relevant slice of Yahoo's v7 quote API.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuoteFields struct {
	Symbol             string  `json:"symbol"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// FetchQuote looks up the current snapshot for a ticker. The ticker is passed
// through unvalidated; Yahoo decides what it means and returns its own
// normalized casing in the result.
func (c *YahooClient) FetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	u := fmt.Sprintf(c.baseURL, url.QueryEscape(strings.TrimSpace(ticker)))

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: yahoo status %d: %s", ErrQuoteUnavailable, resp.StatusCode, string(body))
	}

	var data yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrQuoteUnavailable, err)
	}
	if data.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error: %s", ErrQuoteUnavailable, data.QuoteResponse.Error.Description)
	}
	if len(data.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: no result for %q", ErrQuoteUnavailable, ticker)
	}

	raw := data.QuoteResponse.Result[0]
	var fields yahooQuoteFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: decode result: %v", ErrQuoteUnavailable, err)
	}
	if fields.Symbol == "" {
		return nil, fmt.Errorf("%w: result missing symbol for %q", ErrQuoteUnavailable, ticker)
	}

	return &Quote{
		Symbol:    fields.Symbol,
		ShortName: fields.ShortName,
		Price:     fields.RegularMarketPrice,
		Raw:       raw,
	}, nil
}
