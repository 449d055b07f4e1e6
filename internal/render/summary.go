package render

import (
	"regexp"
	"strings"
)

// DetailLevel controls how much derived information a candidate summary
// carries.
type DetailLevel string

const (
	DetailShort    DetailLevel = "SHORT"
	DetailMedium   DetailLevel = "MEDIUM"
	DetailDetailed DetailLevel = "DETAILED"
)

// Per-level character caps. Oversized output is truncated with an ellipsis,
// never rejected.
const (
	capShort    = 420
	capMedium   = 850
	capDetailed = 1100
	capGeneric  = 3000
)

// ParseDetailLevel matches case-insensitively; anything unknown is not a level.
func ParseDetailLevel(s string) (DetailLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SHORT":
		return DetailShort, true
	case "MEDIUM":
		return DetailMedium, true
	case "DETAILED":
		return DetailDetailed, true
	default:
		return "", false
	}
}

// DetailFor picks the level for an event type: per-event mapping first, then
// the global default, then MEDIUM.
func DetailFor(eventType string, levels map[string]string, global string) DetailLevel {
	if lv, ok := ParseDetailLevel(levels[eventType]); ok {
		return lv
	}
	if lv, ok := ParseDetailLevel(global); ok {
		return lv
	}
	return DetailMedium
}

// Candidate is the profile a summary is built from. RawSummary holds the
// near-verbatim text captured from the screening conversation.
type Candidate struct {
	Name         string `json:"name,omitempty"`
	RUT          string `json:"rut,omitempty"`
	Location     string `json:"location,omitempty"`
	Experience   string `json:"experience,omitempty"`
	Availability string `json:"availability,omitempty"`
	Expectation  string `json:"expectation,omitempty"`
	RawSummary   string `json:"raw_summary,omitempty"`
}

// Summary renders the candidate block at the requested detail level.
func Summary(c Candidate, level DetailLevel) string {
	c = withExtractedRUT(c)
	switch level {
	case DetailShort:
		return truncate(shortSummary(c), capShort)
	case DetailDetailed:
		return truncate(detailedSummary(c), capDetailed)
	default:
		return truncate(mediumSummary(c), capMedium)
	}
}

// Recommendation checks the fields an admin needs before picking up the
// phone and either declares readiness or lists what is missing.
func Recommendation(c Candidate) string {
	c = withExtractedRUT(c)
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "nombre")
	}
	if strings.TrimSpace(c.Location) == "" {
		missing = append(missing, "comuna")
	}
	if strings.TrimSpace(c.RUT) == "" {
		missing = append(missing, "RUT")
	}
	if strings.TrimSpace(c.Experience) == "" {
		missing = append(missing, "experiencia")
	}
	if strings.TrimSpace(c.Availability) == "" {
		missing = append(missing, "disponibilidad")
	}
	if len(missing) == 0 {
		return "Listo para contactar: datos completos."
	}
	return "Faltan datos: " + strings.Join(missing, ", ")
}

// ClampGeneric caps free-form summary text (e.g. the sales report body).
func ClampGeneric(s string) string {
	return truncate(s, capGeneric)
}

// withExtractedRUT fills an empty RUT field from a RUT-shaped token in the
// raw conversation text, when one exists.
func withExtractedRUT(c Candidate) Candidate {
	if strings.TrimSpace(c.RUT) == "" {
		c.RUT = ExtractRUT(c.RawSummary)
	}
	return c
}

func shortSummary(c Candidate) string {
	var b strings.Builder
	line(&b, "Nombre", c.Name)
	line(&b, "Comuna", c.Location)
	line(&b, "Disponibilidad", c.Availability)
	return strings.TrimRight(b.String(), "\n")
}

func mediumSummary(c Candidate) string {
	var b strings.Builder
	b.WriteString(shortSummary(c))
	b.WriteString("\n")
	if rut := strings.TrimSpace(c.RUT); rut != "" {
		mark := "inválido"
		if ValidRUT(rut) {
			mark = "verificado"
		}
		line(&b, "RUT", rut+" ("+mark+")")
	}
	line(&b, "Experiencia", experienceSignal(c.Experience))
	line(&b, "Pretensión", c.Expectation)
	return strings.TrimRight(b.String(), "\n")
}

func detailedSummary(c Candidate) string {
	body := strings.TrimSpace(c.RawSummary)
	if body == "" {
		body = mediumSummary(c)
	}
	// The closing recommendation must survive truncation; only the raw body
	// shrinks to make room.
	rec := Recommendation(c)
	body = truncate(body, capDetailed-len([]rune(rec))-2)
	return body + "\n\n" + rec
}

func line(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

var yearsRe = regexp.MustCompile(`(\d+)\s*años?`)

// experienceSignal maps free-form experience text to a categorical label.
func experienceSignal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "sin experiencia") {
		return "Sin experiencia previa"
	}
	if m := yearsRe.FindStringSubmatch(low); m != nil {
		return m[1] + " años de experiencia"
	}
	return "Con experiencia declarada"
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
