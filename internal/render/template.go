package render

import (
	"strings"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
)

// TemplateKind is the closed set of provider templates the resolver knows.
// The provider takes a fixed ordered positional-argument list per template,
// and the templates disagree on which semantic field occupies which slot, so
// resolution is per-kind rather than generic key/value substitution.
type TemplateKind int

// Slot layouts: interview = (candidate, day, time, location),
// welcome = (candidate, company), reminder = (candidate, day, time).
const (
	KindUnknown TemplateKind = iota
	KindInterview
	KindWelcome
	KindReminder
)

// kindAliases are the fixed alternate identifiers recognized besides the
// configured template names.
var kindAliases = map[string]TemplateKind{
	"agenda_entrevista":       KindInterview,
	"entrevista_agendada":     KindInterview,
	"interview_scheduled":     KindInterview,
	"bienvenida_candidato":    KindWelcome,
	"candidate_welcome":       KindWelcome,
	"recordatorio_entrevista": KindReminder,
	"interview_reminder":      KindReminder,
}

// KindOf resolves a template identifier to its kind once, at lookup time.
// The configured workspace names take precedence over the fixed aliases.
func KindOf(templateID string, names config.TemplateNames) TemplateKind {
	id := strings.ToLower(strings.TrimSpace(templateID))
	if id == "" {
		return KindUnknown
	}
	switch {
	case names.Interview != "" && id == strings.ToLower(names.Interview):
		return KindInterview
	case names.Welcome != "" && id == strings.ToLower(names.Welcome):
		return KindWelcome
	case names.Reminder != "" && id == strings.ToLower(names.Reminder):
		return KindReminder
	}
	return kindAliases[id]
}

// Overrides carry per-call values supplied by the triggering workflow (e.g.
// the interview day the scheduler just booked).
type Overrides struct {
	CandidateName string
	Day           string
	Time          string
	Location      string
}

// Hardcoded system defaults, the last stop before the generic placeholder.
const (
	fallbackDay      = "por confirmar"
	fallbackTime     = "por confirmar"
	fallbackLocation = "Online"
	fallbackCompany  = "el equipo"
	genericName      = "Candidato/a"
)

// ResolvePositional maps a template identifier plus a partial variable list
// to the fully populated ordered list the provider expects.
//
// Each slot independently prefers: the provided value at that position, the
// per-call override, the configured default, the hardcoded default, and (for
// name-like slots only) a generic placeholder.
//
// Unrecognized template identifiers pass through: the provided list is
// returned with only trimming applied, no fallback — callers own the
// variables of templates the resolver does not know.
func ResolvePositional(templateID string, provided []string, names config.TemplateNames, defs config.TemplateDefaults, ov Overrides) []string {
	vars := cleanVars(provided)

	switch KindOf(templateID, names) {
	case KindInterview:
		return []string{
			slot(vars, 0, ov.CandidateName, defs.CandidateName, "", true),
			slot(vars, 1, ov.Day, defs.Day, fallbackDay, false),
			slot(vars, 2, ov.Time, defs.Time, fallbackTime, false),
			slot(vars, 3, ov.Location, defs.Location, fallbackLocation, false),
		}
	case KindWelcome:
		return []string{
			slot(vars, 0, ov.CandidateName, defs.CandidateName, "", true),
			slot(vars, 1, "", defs.CompanyName, fallbackCompany, false),
		}
	case KindReminder:
		return []string{
			slot(vars, 0, ov.CandidateName, defs.CandidateName, "", true),
			slot(vars, 1, ov.Day, defs.Day, fallbackDay, false),
			slot(vars, 2, ov.Time, defs.Time, fallbackTime, false),
		}
	default:
		return vars
	}
}

// cleanVars trims every entry and drops empty ones, preserving order.
func cleanVars(provided []string) []string {
	out := make([]string, 0, len(provided))
	for _, v := range provided {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func slot(vars []string, i int, override, configured, hard string, nameSlot bool) string {
	if i < len(vars) && vars[i] != "" {
		return vars[i]
	}
	for _, v := range []string{override, configured, hard} {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if nameSlot {
		return genericName
	}
	return ""
}
