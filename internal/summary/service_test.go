package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/dispatch"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/outbound"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/render"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/storage"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/transport"
)

type fixedReporter struct {
	rep Report
	err error
}

func (f fixedReporter) Report(context.Context, time.Time) (Report, error) { return f.rep, f.err }

type captureNotifier struct {
	events []dispatch.Event
}

func (c *captureNotifier) Notify(ev dispatch.Event) { c.events = append(c.events, ev) }

func TestRunBuildsSalesSummaryEvent(t *testing.T) {
	n := &captureNotifier{}
	s := New(Config{Enabled: true, Period: 24 * time.Hour},
		fixedReporter{rep: Report{Conversations: 4, Sent: 9, Failed: 1}}, n, zerolog.Nop())

	s.run()

	require.Len(t, n.events, 1)
	ev := n.events[0]
	require.Equal(t, render.EventSalesSummary, ev.Type)
	require.Equal(t, "últimas 24 horas", ev.Period)
	require.Contains(t, ev.Vars["summary"], "Conversaciones nuevas: 4")
	require.Contains(t, ev.Vars["summary"], "Notificaciones enviadas: 9")
	require.Contains(t, ev.Vars["summary"], "Notificaciones fallidas: 1")
}

func TestRunStampsReportDate(t *testing.T) {
	n := &captureNotifier{}
	s := New(Config{Enabled: true}, fixedReporter{}, n, zerolog.Nop())

	s.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	s.run()
	s.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }
	s.run()

	require.Len(t, n.events, 2)
	require.Equal(t, "2026-08-30", n.events[0].Day)
	require.NotEqual(t, n.events[0].Key(), n.events[1].Key(),
		"each day's report is its own logical event")
}

type recordTransport struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordTransport) SendText(_ context.Context, _, text string, _ transport.SendOptions) (transport.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return transport.Result{}, nil
}

func (r *recordTransport) Close() error { return nil }

type adminSnap struct{}

func (adminSnap) Snapshot(context.Context) (config.Snapshot, error) {
	return config.Snapshot{AdminNumbers: []string{"+56961234567"}}, nil
}

func TestConsecutiveDailyRunsBothDeliver(t *testing.T) {
	tr := &recordTransport{}
	coord := dispatch.New(outbound.Environment{}, adminSnap{}, storage.NewMemory(), tr, nil, nil,
		dispatch.Options{RatePerSec: 1000}, zerolog.Nop())
	s := New(Config{Enabled: true}, fixedReporter{rep: Report{Sent: 3}}, coord, zerolog.Nop())

	s.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	s.run()
	coord.Wait()
	s.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }
	s.run()
	coord.Wait()
	require.Len(t, tr.sent, 2, "the second day's report must not dedup against the first")

	// A same-day re-run is the same logical event and stays suppressed.
	s.run()
	coord.Wait()
	require.Len(t, tr.sent, 2)
}

func TestRunSkipsOnReportError(t *testing.T) {
	n := &captureNotifier{}
	s := New(Config{Enabled: true}, fixedReporter{err: errors.New("db down")}, n, zerolog.Nop())

	s.run()
	require.Empty(t, n.events)
}

func TestBuildBodyOmitsZeroFailures(t *testing.T) {
	body := buildBody(Report{Conversations: 2, Sent: 5})
	require.NotContains(t, body, "fallidas")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(Config{Enabled: true, Schedule: "not a cron"}, fixedReporter{}, &captureNotifier{}, zerolog.Nop())
	require.Error(t, s.Start())

	disabled := New(Config{Schedule: "not a cron"}, fixedReporter{}, &captureNotifier{}, zerolog.Nop())
	require.NoError(t, disabled.Start(), "disabled service never parses the schedule")
}

func TestPeriodLabel(t *testing.T) {
	require.Equal(t, "últimas 24 horas", periodLabel(24*time.Hour))
	require.Equal(t, "últimos 7 días", periodLabel(7*24*time.Hour))
	require.Equal(t, "últimas 12 horas", periodLabel(12*time.Hour))
}
