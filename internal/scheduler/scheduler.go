package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Round is one full synthesis pass over the tracked symbols.
type Round interface {
	RunRound(ctx context.Context) error
}

type Config struct {
	// CronSpec uses seconds-granularity cron syntax, e.g. "*/15 * * * * *".
	CronSpec string
	// RoundTimeout bounds a single round. Defaults to 30s.
	RoundTimeout time.Duration
}

// Scheduler fires synthesis rounds on a fixed cadence. It owns its cron
// instance and the handles it was constructed with; there is no package
// state, and exactly one instance is expected per process.
type Scheduler struct {
	engine Round
	cfg    Config

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
}

func New(engine Round, cfg Config) *Scheduler {
	if cfg.CronSpec == "" {
		cfg.CronSpec = "*/15 * * * * *"
	}
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = 30 * time.Second
	}
	return &Scheduler{
		engine: engine,
		cfg:    cfg,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		fmt.Println("[SCHEDULER] Already running")
		return nil
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.cfg.CronSpec, s.runOnce); err != nil {
		return fmt.Errorf("register synthesis task: %w", err)
	}
	c.Start()

	s.cron = c
	s.running = true
	fmt.Printf("[SCHEDULER] Started (spec %q)\n", s.cfg.CronSpec)
	return nil
}

// Stop halts the schedule and waits for an in-flight round to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	fmt.Println("[SCHEDULER] Stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow triggers a round outside the normal schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	fmt.Println("[SCHEDULER] Manual synthesis round triggered")
	return s.engine.RunRound(ctx)
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RoundTimeout)
	defer cancel()
	if err := s.engine.RunRound(ctx); err != nil {
		fmt.Printf("[SCHEDULER] Synthesis round failed: %v\n", err)
	}
}
