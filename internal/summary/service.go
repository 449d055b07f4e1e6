// Package summary triggers the periodic sales summary notification.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/dispatch"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/render"
)

// Report is the aggregate a summary notification is built from.
type Report struct {
	Period        string
	Conversations int
	Sent          int
	Failed        int
}

// Reporter produces the report for a lookback window.
type Reporter interface {
	Report(ctx context.Context, since time.Time) (Report, error)
}

// Notifier is the dispatch entry point the service feeds.
type Notifier interface {
	Notify(ev dispatch.Event)
}

type Config struct {
	Enabled  bool
	Schedule string        // cron expression; default "0 9 * * *"
	Period   time.Duration // lookback; default 24h
}

// Service owns the cron entry. Start is a no-op when disabled.
type Service struct {
	cfg      Config
	reporter Reporter
	notifier Notifier
	log      zerolog.Logger

	cron *cron.Cron
	now  func() time.Time // overridable in tests
}

func New(cfg Config, rep Reporter, n Notifier, log zerolog.Logger) *Service {
	if strings.TrimSpace(cfg.Schedule) == "" {
		cfg.Schedule = "0 9 * * *"
	}
	if cfg.Period <= 0 {
		cfg.Period = 24 * time.Hour
	}
	return &Service{
		cfg:      cfg,
		reporter: rep,
		notifier: n,
		log:      log.With().Str("comp", "summary").Logger(),
		now:      time.Now,
	}
}

func (s *Service) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, s.run); err != nil {
		return fmt.Errorf("summary schedule %q: %w", s.cfg.Schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Info().Str("schedule", s.cfg.Schedule).Msg("sales summary scheduled")
	return nil
}

// Stop waits for a running report until ctx expires.
func (s *Service) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Service) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.now()
	rep, err := s.reporter.Report(ctx, now.Add(-s.cfg.Period))
	if err != nil {
		s.log.Warn().Err(err).Msg("sales report failed, skipping summary")
		return
	}
	if rep.Period == "" {
		rep.Period = periodLabel(s.cfg.Period)
	}

	// The report date is part of the idempotency key: each day is its own
	// logical event, while a same-day re-run stays deduplicated.
	s.notifier.Notify(dispatch.Event{
		Type:   render.EventSalesSummary,
		Day:    now.Format("2006-01-02"),
		Period: rep.Period,
		Vars:   map[string]string{"summary": buildBody(rep)},
	})
}

func buildBody(rep Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Conversaciones nuevas: %d\n", rep.Conversations)
	fmt.Fprintf(&b, "Notificaciones enviadas: %d\n", rep.Sent)
	if rep.Failed > 0 {
		fmt.Fprintf(&b, "Notificaciones fallidas: %d\n", rep.Failed)
	}
	return strings.TrimRight(b.String(), "\n")
}

func periodLabel(d time.Duration) string {
	if d%(24*time.Hour) == 0 {
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "últimas 24 horas"
		}
		return fmt.Sprintf("últimos %d días", days)
	}
	return fmt.Sprintf("últimas %d horas", int(d.Hours()))
}
