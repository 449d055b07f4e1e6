package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
)

func TestKindOf(t *testing.T) {
	names := config.TemplateNames{Interview: "agenda_v2"}

	require.Equal(t, KindInterview, KindOf("agenda_v2", names))
	require.Equal(t, KindInterview, KindOf(" AGENDA_ENTREVISTA ", names))
	require.Equal(t, KindWelcome, KindOf("bienvenida_candidato", names))
	require.Equal(t, KindReminder, KindOf("interview_reminder", names))
	require.Equal(t, KindUnknown, KindOf("marketing_blast", names))
	require.Equal(t, KindUnknown, KindOf("", names))
}

func TestResolvePositionalInterview(t *testing.T) {
	defs := config.TemplateDefaults{Location: "Oficina Providencia"}
	ov := Overrides{Day: "Lunes", Time: "10:00"}

	// Provided wins, then override, then configured, then hardcoded.
	got := ResolvePositional("agenda_entrevista", []string{" María ", "", "  "}, config.TemplateNames{}, defs, ov)
	require.Equal(t, []string{"María", "Lunes", "10:00", "Oficina Providencia"}, got)

	// No inputs at all: hardcoded defaults plus the generic name placeholder.
	got = ResolvePositional("agenda_entrevista", nil, config.TemplateNames{}, config.TemplateDefaults{}, Overrides{})
	require.Equal(t, []string{"Candidato/a", "por confirmar", "por confirmar", "Online"}, got)
}

func TestResolvePositionalWelcome(t *testing.T) {
	got := ResolvePositional("candidate_welcome", []string{"Pedro"}, config.TemplateNames{}, config.TemplateDefaults{CompanyName: "Mangoro"}, Overrides{})
	require.Equal(t, []string{"Pedro", "Mangoro"}, got)

	got = ResolvePositional("candidate_welcome", nil, config.TemplateNames{}, config.TemplateDefaults{}, Overrides{})
	require.Equal(t, []string{"Candidato/a", "el equipo"}, got)
}

func TestResolvePositionalPassthrough(t *testing.T) {
	// Unknown templates: provided list passes through with trimming only.
	got := ResolvePositional("marketing_blast", []string{" a ", "", "b"}, config.TemplateNames{}, config.TemplateDefaults{Day: "Martes"}, Overrides{Day: "Lunes"})
	require.Equal(t, []string{"a", "b"}, got)
}
