package models

import (
	"encoding/json"
	"time"
)

// TrackedStock is one watchlist row. Data holds the raw provider quote
// captured when the stock was added; nothing in the backend reads into it.
type TrackedStock struct {
	ID        int64           `json:"id"`
	Symbol    string          `json:"symbol"`
	ShortName string          `json:"short_name"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
