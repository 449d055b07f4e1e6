package dispatch

import (
	"strings"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/render"
)

// Event is one logical business event to notify admins about.
type Event struct {
	Type string `json:"type"`

	// Contact the event is about (the candidate, not the recipient).
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	// Interview context, when applicable.
	ReservationID string `json:"reservation_id,omitempty"`
	Day           string `json:"day,omitempty"`
	Time          string `json:"time,omitempty"`
	Location      string `json:"location,omitempty"`

	// Candidate profile, for candidate_ready.
	Candidate *render.Candidate `json:"candidate,omitempty"`

	// Period label, for sales_summary.
	Period string `json:"period,omitempty"`

	// Extra named variables merged into the renderer's variable map;
	// they win over the derived ones on key collision.
	Vars map[string]string `json:"vars,omitempty"`
}

// Key builds the idempotency token for the event. Re-triggering the same
// logical event (e.g. retried business logic) must yield the same key, and
// the key must stay stable across process restarts so persisted logs still
// dedup after a crash.
func (ev Event) Key() string {
	parts := []string{ev.Type, ev.ContactPhone, ev.ReservationID, ev.Day, ev.Time, ev.Location}
	for i, p := range parts {
		parts[i] = sanitizeKeyPart(p)
	}
	return strings.Join(parts, "|")
}

// sanitizeKeyPart keeps the key single-line and free of the separator and
// the reference-tag brackets.
func sanitizeKeyPart(s string) string {
	s = strings.TrimSpace(s)
	r := strings.NewReplacer("|", "/", "[", "(", "]", ")", "\n", " ", "\r", " ")
	return r.Replace(s)
}
