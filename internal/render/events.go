package render

// Notification event types.
const (
	EventCandidateReady     = "candidate_ready"
	EventInterviewScheduled = "interview_scheduled"
	EventInterviewConfirmed = "interview_confirmed"
	EventInterviewCancelled = "interview_cancelled"
	EventSalesSummary       = "sales_summary"
)

// DefaultTemplates ships with the system; stored overrides are merged on top
// per event key via MergeTemplates.
func DefaultTemplates() map[string]string {
	return map[string]string{
		EventCandidateReady:     "🎯 Nuevo candidato listo\n\n{{summary}}\n\n{{recommendation}}",
		EventInterviewScheduled: "📅 Entrevista agendada: {{candidateName}}\n{{day}} {{time}}, {{location}}\nEstado: PENDIENTE",
		EventInterviewConfirmed: "✅ Entrevista confirmada: {{candidateName}}\n{{day}} {{time}}, {{location}}\nEstado: CONFIRMADA",
		EventInterviewCancelled: "❌ Entrevista cancelada: {{candidateName}}\n{{day}} {{time}}, {{location}}\nEstado: CANCELADA",
		EventSalesSummary:       "📊 Resumen de ventas {{period}}\n\n{{summary}}",
	}
}

// MergeTemplates overlays override onto defaults, override winning per key.
// Keys the renderer never looks up are carried along harmlessly.
func MergeTemplates(defaults, override map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(override))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
