package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Settings keys recognized in the settings store. Scalar ("legacy") and list
// forms of the same source are merged at this boundary so nothing deeper in
// the call graph ever branches on "is this a string or a list".
const (
	KeyOutboundPolicy = "outbound_policy"

	KeyAdminPhone  = "admin_phone"  // legacy scalar
	KeyAdminPhones = "admin_phones" // list
	KeyTestPhone   = "test_phone"
	KeyTestPhones  = "test_phones"
	KeyAllowPhone  = "outbound_allowed_phone"
	KeyAllowPhones = "outbound_allowlist"

	KeyTemplates          = "notification_templates" // JSON object event->template
	KeyDetailLevels       = "summary_detail_levels"  // JSON object event->level
	KeyDefaultDetailLevel = "summary_detail_level"
	KeyEnabledEvents      = "notification_events" // list; empty = all events

	KeyCompanyName      = "company_name"
	KeyDefaultDay       = "default_interview_day"
	KeyDefaultTime      = "default_interview_time"
	KeyDefaultLocation  = "default_interview_location"
	KeyDefaultCandidate = "default_candidate_name"

	// Provider-side structured template names, as approved for this
	// workspace. Empty means the event falls back to plain text.
	KeyTemplateInterview = "provider_template_interview"
	KeyTemplateWelcome   = "provider_template_welcome"
	KeyTemplateReminder  = "provider_template_reminder"
)

// Snapshot is the stored-settings view consumed by a single dispatch. It is
// recomputed from the settings store on every call and never cached beyond
// one dispatch. The zero value is a valid "no settings" snapshot; every
// consumer applies its own documented default on absence.
type Snapshot struct {
	PolicyOverride string

	AdminNumbers []string
	TestNumbers  []string
	Allowlist    []string

	Templates          map[string]string
	DetailLevels       map[string]string
	DefaultDetailLevel string
	EnabledEvents      []string

	TemplateDefaults TemplateDefaults
	TemplateNames    TemplateNames
}

// TemplateDefaults are the configured per-slot defaults used by the
// positional variable resolver.
type TemplateDefaults struct {
	CandidateName string
	CompanyName   string
	Day           string
	Time          string
	Location      string
}

// TemplateNames are the provider-side structured template names configured
// for this workspace (they differ per deployment; empty matches nothing).
type TemplateNames struct {
	Interview string
	Welcome   string
	Reminder  string
}

// BuildSnapshot assembles a Snapshot from raw settings rows.
func BuildSnapshot(settings map[string]string) Snapshot {
	get := func(k string) string { return strings.TrimSpace(settings[k]) }

	return Snapshot{
		PolicyOverride: decodeScalar(settings[KeyOutboundPolicy]),

		AdminNumbers: mergeLegacy(settings[KeyAdminPhone], decodeList(settings[KeyAdminPhones])),
		TestNumbers:  mergeLegacy(settings[KeyTestPhone], decodeList(settings[KeyTestPhones])),
		Allowlist:    mergeLegacy(settings[KeyAllowPhone], decodeList(settings[KeyAllowPhones])),

		Templates:          decodeStringMap(settings[KeyTemplates]),
		DetailLevels:       decodeStringMap(settings[KeyDetailLevels]),
		DefaultDetailLevel: decodeScalar(settings[KeyDefaultDetailLevel]),
		EnabledEvents:      decodeList(settings[KeyEnabledEvents]),

		TemplateDefaults: TemplateDefaults{
			CandidateName: decodeScalar(get(KeyDefaultCandidate)),
			CompanyName:   decodeScalar(get(KeyCompanyName)),
			Day:           decodeScalar(get(KeyDefaultDay)),
			Time:          decodeScalar(get(KeyDefaultTime)),
			Location:      decodeScalar(get(KeyDefaultLocation)),
		},
		TemplateNames: TemplateNames{
			Interview: decodeScalar(get(KeyTemplateInterview)),
			Welcome:   decodeScalar(get(KeyTemplateWelcome)),
			Reminder:  decodeScalar(get(KeyTemplateReminder)),
		},
	}
}

// decodeScalar accepts either a raw string or a JSON-encoded string.
func decodeScalar(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return s
}

// decodeList accepts a JSON array, a JSON string, or a raw string and always
// returns a list. Unparsable stored JSON yields nil, never an error.
func decodeList(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var vs []string
		if err := json.Unmarshal([]byte(s), &vs); err == nil {
			return vs
		}
		var anyv []any
		if err := json.Unmarshal([]byte(s), &anyv); err == nil {
			out := make([]string, 0, len(anyv))
			for _, v := range anyv {
				out = append(out, fmt.Sprint(v))
			}
			return out
		}
		return nil
	}
	return []string{decodeScalar(s)}
}

func decodeStringMap(raw string) map[string]string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// mergeLegacy prepends a legacy scalar value to the list form when it is not
// already present.
func mergeLegacy(legacy string, list []string) []string {
	v := decodeScalar(legacy)
	if v == "" {
		return list
	}
	for _, existing := range list {
		if strings.TrimSpace(existing) == v {
			return list
		}
	}
	return append([]string{v}, list...)
}

// SettingsFunc reads all settings rows; the storage layer satisfies it.
type SettingsFunc func(ctx context.Context) (map[string]string, error)

// Loader turns a settings source into per-dispatch snapshots. A nil source
// or a read error yields the zero Snapshot so missing configuration is never
// fatal.
type Loader struct {
	Settings SettingsFunc
}

func (l Loader) Snapshot(ctx context.Context) (Snapshot, error) {
	if l.Settings == nil {
		return Snapshot{}, nil
	}
	settings, err := l.Settings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return BuildSnapshot(settings), nil
}
