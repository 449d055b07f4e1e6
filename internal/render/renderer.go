package render

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render builds the final message text for eventType from the merged
// template map and named variables. Placeholders without a matching variable
// collapse to empty text; a template that renders to nothing (after
// trimming) is replaced by the hardcoded fallback for the event type, so an
// empty or malformed custom template never turns into a silent no-op.
func Render(eventType string, templates map[string]string, vars map[string]string) string {
	tpl := templates[eventType]
	out := placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		return vars[name]
	})
	out = strings.TrimSpace(out)
	if out == "" {
		return fallbackText(eventType)
	}
	return out
}

// ReferenceTag is the machine-readable suffix embedding the event key; the
// dispatcher uses it for duplicate detection against the message log. It
// must stay stable across process restarts.
func ReferenceTag(eventKey string) string {
	return "[REF:" + eventKey + "]"
}

// WithReference appends the reference tag to rendered text. Human-facing
// surfaces outside this core are expected to strip or ignore it.
func WithReference(text, eventKey string) string {
	return text + "\n" + ReferenceTag(eventKey)
}

func fallbackText(eventType string) string {
	switch eventType {
	case EventCandidateReady:
		return "Hay un nuevo candidato listo para contactar."
	case EventInterviewScheduled:
		return "Se agendó una nueva entrevista."
	case EventInterviewConfirmed:
		return "Una entrevista fue confirmada."
	case EventInterviewCancelled:
		return "Una entrevista fue cancelada."
	case EventSalesSummary:
		return "Hay un nuevo resumen de ventas disponible."
	default:
		return "Nueva notificación: " + eventType
	}
}
