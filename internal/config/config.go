package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// Server
	Port            int
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Price synthesis
	SynthesisCron  string  // seconds-granularity cron spec
	SeedPrice      float64 // starting price for symbols with no history
	MaxMovePercent float64 // bound of the random walk, in percent

	// Notifications
	WebhookURL string
	SenderName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		Port:            envInt("PORT", 5000),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "http://localhost:3000"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "stock_dashboard"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Synthesis
		SynthesisCron:  envStr("SYNTHESIS_CRON", "*/15 * * * * *"),
		SeedPrice:      envFloat("SEED_PRICE", 100.00),
		MaxMovePercent: envFloat("MAX_MOVE_PERCENT", 5),

		// Notifications
		WebhookURL: envStr("WEBHOOK_URL", ""),
		SenderName: envStr("SENDER_NAME", "StockDashboard"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.SynthesisCron); err != nil {
		errs = append(errs, fmt.Sprintf("SYNTHESIS_CRON %q is not a valid cron spec: %v", c.SynthesisCron, err))
	}
	if c.SeedPrice <= 0 {
		errs = append(errs, "SEED_PRICE must be positive")
	}
	if c.MaxMovePercent <= 0 || c.MaxMovePercent >= 100 {
		errs = append(errs, "MAX_MOVE_PERCENT must be in (0, 100)")
	}

	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set — price updates will not be forwarded to a webhook")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Stock Dashboard Backend Configuration ===")
	fmt.Printf("HTTP Port: %d\n", c.Port)
	fmt.Printf("CORS Origin: %s\n", c.CORSAllowOrigin)
	fmt.Printf("Auth: %s\n", boolLabel(c.APIKey != "", "enabled (Bearer token)", "disabled"))
	fmt.Println("--------------------------------------")
	fmt.Println("Price Synthesis:")
	fmt.Printf("  Schedule: %s\n", c.SynthesisCron)
	fmt.Printf("  Seed Price: $%.2f\n", c.SeedPrice)
	fmt.Printf("  Max Move: %.1f%%\n", c.MaxMovePercent)
	fmt.Println("--------------------------------------")
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("=============================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
