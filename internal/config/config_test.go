package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Fatalf("default port: got %d", cfg.Port)
	}
	if cfg.SynthesisCron != "*/15 * * * * *" {
		t.Fatalf("default cron: got %q", cfg.SynthesisCron)
	}
	if cfg.SeedPrice != 100.00 {
		t.Fatalf("default seed price: got %v", cfg.SeedPrice)
	}
	if cfg.MaxMovePercent != 5 {
		t.Fatalf("default max move: got %v", cfg.MaxMovePercent)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SEED_PRICE", "250.50")
	t.Setenv("SYNTHESIS_CRON", "*/5 * * * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port override: got %d", cfg.Port)
	}
	if cfg.SeedPrice != 250.50 {
		t.Fatalf("seed override: got %v", cfg.SeedPrice)
	}
	if cfg.SynthesisCron != "*/5 * * * * *" {
		t.Fatalf("cron override: got %q", cfg.SynthesisCron)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBUser:         "postgres",
			SynthesisCron:  "*/15 * * * * *",
			SeedPrice:      100,
			MaxMovePercent: 5,
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := base()
	c.DBUser = ""
	if err := c.Validate(); err == nil {
		t.Fatal("missing DB_USER should fail validation")
	}

	c = base()
	c.SynthesisCron = "every 15 seconds"
	if err := c.Validate(); err == nil {
		t.Fatal("invalid cron spec should fail validation")
	}

	c = base()
	c.SeedPrice = 0
	if err := c.Validate(); err == nil {
		t.Fatal("zero seed price should fail validation")
	}

	c = base()
	c.MaxMovePercent = 100
	if err := c.Validate(); err == nil {
		t.Fatal("max move of 100 percent should fail validation")
	}
}
