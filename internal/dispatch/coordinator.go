// Package dispatch fans business events out to every allowlisted admin
// destination, at most once per (event, destination).
//
// A dispatch is fire-and-forget from the trigger's point of view: policy
// suppression, transport failures, and store errors all end up in the log
// and the per-destination outcome records, never back at the business
// workflow that raised the event.
package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/outbound"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/ratelimit"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/render"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/storage"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/transport"
)

// ConfigSource yields the settings snapshot for one dispatch.
type ConfigSource interface {
	Snapshot(ctx context.Context) (config.Snapshot, error)
}

// OriginResolver picks the sending origin (phone line) for a workspace.
// Failures fall back to the coordinator's default origin.
type OriginResolver interface {
	ActiveOrigin(ctx context.Context, workspace string) (string, error)
}

// StaticOrigin is an OriginResolver that always returns the same id.
type StaticOrigin string

func (o StaticOrigin) ActiveOrigin(context.Context, string) (string, error) {
	return string(o), nil
}

// Options tune a Coordinator. Zero values get defaults in New.
type Options struct {
	Workspace     string
	DefaultOrigin string

	// RatePerSec paces transport sends.
	RatePerSec int
	// BurstLimit/BurstWindow bound notifications per event type; a denied
	// burst is dropped, never queued.
	BurstLimit  int
	BurstWindow time.Duration
	// SendTimeout bounds each transport call.
	SendTimeout time.Duration
	// NotifyTimeout bounds a whole fire-and-forget dispatch.
	NotifyTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.RatePerSec <= 0 {
		o.RatePerSec = 3
	}
	if o.BurstLimit <= 0 {
		o.BurstLimit = 30
	}
	if o.BurstWindow <= 0 {
		o.BurstWindow = time.Minute
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 8 * time.Second
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = 2 * time.Minute
	}
}

// Coordinator is the dispatch entry point. Safe for concurrent use.
type Coordinator struct {
	log       zerolog.Logger
	env       outbound.Environment
	cfgsrc    ConfigSource
	store     storage.Store
	transport transport.Transport
	origins   OriginResolver
	limiter   *ratelimit.Limiter

	mu   sync.Mutex
	opts Options
	pace *rate.Limiter

	notifyWG sync.WaitGroup
}

func New(env outbound.Environment, cfgsrc ConfigSource, st storage.Store, tr transport.Transport, origins OriginResolver, lim *ratelimit.Limiter, opts Options, log zerolog.Logger) *Coordinator {
	if lim == nil {
		lim = ratelimit.New()
	}
	c := &Coordinator{
		log:       log.With().Str("comp", "dispatch").Logger(),
		env:       env,
		cfgsrc:    cfgsrc,
		store:     st,
		transport: tr,
		origins:   origins,
		limiter:   lim,
	}
	c.Apply(opts)
	return c
}

// Apply installs new options; pacing takes effect on the next send.
func (c *Coordinator) Apply(opts Options) {
	opts.applyDefaults()
	c.mu.Lock()
	c.opts = opts
	c.pace = rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RatePerSec)
	c.mu.Unlock()
}

// Notify dispatches ev asynchronously. Errors and panics are absorbed into
// the log; the caller's workflow is never blocked or failed by notification
// problems.
func (c *Coordinator) Notify(ev Event) {
	c.mu.Lock()
	timeout := c.opts.NotifyTimeout
	c.mu.Unlock()

	c.notifyWG.Add(1)
	go func() {
		defer c.notifyWG.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Str("event", ev.Type).Msg("dispatch panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		c.Dispatch(ctx, ev)
	}()
}

// Wait blocks until all in-flight async dispatches finish (shutdown helper).
func (c *Coordinator) Wait() {
	c.notifyWG.Wait()
}

// Dispatch runs one notification synchronously: resolve recipients, build
// the event key, render, then deliver per destination. Each destination is
// its own idempotence scope and its own failure domain.
func (c *Coordinator) Dispatch(ctx context.Context, ev Event) {
	log := c.log.With().Str("event", ev.Type).Logger()

	c.mu.Lock()
	opts := c.opts
	pace := c.pace
	c.mu.Unlock()

	snap := c.snapshot(ctx, log)

	// MayContact is the authoritative per-destination gate; under BLOCK_ALL
	// it rejects every destination, so the whole dispatch drops here.
	var recipients []string
	for _, dest := range outbound.EffectiveAllowlist(snap) {
		if outbound.MayContact(c.env, snap, dest) {
			recipients = append(recipients, dest)
		}
	}
	if len(recipients) == 0 {
		log.Debug().Stringer("policy", outbound.EffectivePolicy(c.env, snap)).Msg("no contactable recipients, skipping")
		return
	}

	if !eventEnabled(snap, ev.Type) {
		log.Debug().Msg("event type not enabled, skipping")
		return
	}

	if d := c.limiter.Check("notify:"+ev.Type, opts.BurstLimit, opts.BurstWindow); !d.Allowed {
		log.Warn().Int64("retry_after_ms", d.RetryAfterMs).Msg("notification burst limit hit, dropping")
		return
	}

	msg := outboundMsg{
		key:   ev.Key(),
		event: ev.Type,
	}
	msg.text = renderText(ev, snap, msg.key)
	msg.template, msg.params = providerTemplate(ev, snap)
	msg.origin = c.resolveOrigin(ctx, opts, log)

	for _, dest := range recipients {
		// Sequential on purpose: the check-then-send-then-log sequence for
		// one destination must not race itself.
		c.deliverOne(ctx, log, pace, opts, dest, msg)
	}
}

// outboundMsg is one rendered notification, ready for any destination. When
// template is set and the transport supports structured sends, the template
// goes over the wire; text is always what the message log records.
type outboundMsg struct {
	text     string
	template string
	params   []string
	key      string
	event    string
	origin   string
}

func (c *Coordinator) snapshot(ctx context.Context, log zerolog.Logger) config.Snapshot {
	if c.cfgsrc == nil {
		return config.Snapshot{}
	}
	snap, err := c.cfgsrc.Snapshot(ctx)
	if err != nil {
		// Missing configuration means defaults, never a failed dispatch.
		log.Warn().Err(err).Msg("settings snapshot failed, using defaults")
		return config.Snapshot{}
	}
	return snap
}

func (c *Coordinator) resolveOrigin(ctx context.Context, opts Options, log zerolog.Logger) string {
	if c.origins == nil {
		return opts.DefaultOrigin
	}
	origin, err := c.origins.ActiveOrigin(ctx, opts.Workspace)
	if err != nil || origin == "" {
		if err != nil {
			log.Debug().Err(err).Msg("origin resolve failed, using default")
		}
		return opts.DefaultOrigin
	}
	return origin
}

func (c *Coordinator) deliverOne(ctx context.Context, log zerolog.Logger, pace *rate.Limiter, opts Options, dest string, msg outboundMsg) {
	dlog := log.With().Str("dest", dest).Logger()

	conv, err := c.store.FindOrCreateConversation(ctx, dest)
	if err != nil {
		dlog.Error().Err(err).Msg("conversation lookup failed")
		return
	}

	seen, err := c.store.HasReference(ctx, conv.ID, msg.key)
	if err != nil {
		dlog.Error().Err(err).Msg("reference check failed")
		return
	}
	if seen {
		dlog.Debug().Str("ref", msg.key).Msg("already delivered, skipping")
		return
	}

	var sendErr error
	if pace != nil {
		sendErr = pace.Wait(ctx)
	}
	if sendErr == nil {
		sctx, cancel := context.WithTimeout(ctx, opts.SendTimeout)
		opt := transport.SendOptions{OriginID: msg.origin}
		if ts, ok := c.transport.(transport.TemplateSender); ok && msg.template != "" {
			_, sendErr = ts.SendTemplate(sctx, dest, msg.template, msg.params, opt)
		} else {
			_, sendErr = c.transport.SendText(sctx, dest, msg.text, opt)
		}
		cancel()
	}

	meta := storage.MessageMeta{
		EventType: msg.event,
		Reference: msg.key,
		Status:    storage.StatusSent,
		OriginID:  msg.origin,
	}
	if sendErr != nil {
		meta.Status = storage.StatusFailed
		meta.Error = sendErr.Error()
		dlog.Warn().Err(sendErr).Msg("notification send failed")
	} else {
		dlog.Info().Msg("notification sent")
	}

	// The outcome is logged regardless of transport result; template sends
	// record the rendered text as the canonical content.
	if err := c.store.AppendMessage(ctx, conv.ID, storage.DirectionOut, msg.text, meta); err != nil {
		dlog.Error().Err(err).Msg("outcome log write failed")
	}
}

// eventEnabled applies the configured allowed-event set; an empty set means
// every event type is enabled.
func eventEnabled(snap config.Snapshot, eventType string) bool {
	if len(snap.EnabledEvents) == 0 {
		return true
	}
	for _, e := range snap.EnabledEvents {
		if e == eventType {
			return true
		}
	}
	return false
}

// providerTemplate picks the configured provider-side structured template for
// the event, with its positional parameters fully resolved. An empty name
// means the event goes out as plain text.
func providerTemplate(ev Event, snap config.Snapshot) (string, []string) {
	names := snap.TemplateNames

	var id string
	switch ev.Type {
	case render.EventInterviewScheduled:
		id = names.Interview
	case render.EventInterviewConfirmed:
		id = names.Reminder
	}
	if strings.TrimSpace(id) == "" {
		return "", nil
	}

	params := render.ResolvePositional(id, nil, names, snap.TemplateDefaults, render.Overrides{
		CandidateName: ev.ContactName,
		Day:           ev.Day,
		Time:          ev.Time,
		Location:      ev.Location,
	})
	return id, params
}

// renderText builds the final message for the event, reference tag included.
func renderText(ev Event, snap config.Snapshot, key string) string {
	vars := map[string]string{
		"candidateName": ev.ContactName,
		"day":           ev.Day,
		"time":          ev.Time,
		"location":      ev.Location,
		"reservationId": ev.ReservationID,
		"period":        ev.Period,
	}

	if ev.Type == render.EventCandidateReady && ev.Candidate != nil {
		level := render.DetailFor(ev.Type, snap.DetailLevels, snap.DefaultDetailLevel)
		vars["summary"] = render.Summary(*ev.Candidate, level)
		vars["recommendation"] = render.Recommendation(*ev.Candidate)
		if vars["candidateName"] == "" {
			vars["candidateName"] = ev.Candidate.Name
		}
	}

	for k, v := range ev.Vars {
		vars[k] = v
	}
	if ev.Type == render.EventSalesSummary {
		vars["summary"] = render.ClampGeneric(vars["summary"])
	}

	templates := render.MergeTemplates(render.DefaultTemplates(), snap.Templates)
	text := render.Render(ev.Type, templates, vars)
	return render.WithReference(text, key)
}
