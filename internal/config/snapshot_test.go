package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeListForms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"raw scalar", "+56961234567", []string{"+56961234567"}},
		{"json scalar", `"+56961234567"`, []string{"+56961234567"}},
		{"json array", `["+56961234567","+56972345678"]`, []string{"+56961234567", "+56972345678"}},
		{"mixed array", `["+56961234567", 42]`, []string{"+56961234567", "42"}},
		{"broken json array", `["oops`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, decodeList(tc.raw))
		})
	}
}

func TestMergeLegacyPrepends(t *testing.T) {
	got := mergeLegacy("+56961234567", []string{"+56972345678"})
	require.Equal(t, []string{"+56961234567", "+56972345678"}, got)

	// Already present in list form: no duplicate.
	got = mergeLegacy(`"+56961234567"`, []string{"+56961234567"})
	require.Equal(t, []string{"+56961234567"}, got)

	require.Equal(t, []string{"only"}, mergeLegacy("only", nil))
}

func TestBuildSnapshot(t *testing.T) {
	snap := BuildSnapshot(map[string]string{
		KeyOutboundPolicy: `"Allow_All"`,
		KeyAdminPhone:     "+56961234567",
		KeyAdminPhones:    `["+56972345678"]`,
		KeyTemplates:      `{"interview_scheduled":"custom {{day}}"}`,
		KeyDetailLevels:   `{"candidate_ready":"short"}`,
		KeyEnabledEvents:  `["interview_scheduled"]`,
		KeyDefaultDay:     "por confirmar",

		KeyTemplateInterview: `"agenda_v2"`,
		KeyTemplateReminder:  "recordatorio_v1",
	})

	require.Equal(t, "Allow_All", snap.PolicyOverride)
	require.Equal(t, []string{"+56961234567", "+56972345678"}, snap.AdminNumbers)
	require.Equal(t, "custom {{day}}", snap.Templates["interview_scheduled"])
	require.Equal(t, "short", snap.DetailLevels["candidate_ready"])
	require.Equal(t, []string{"interview_scheduled"}, snap.EnabledEvents)
	require.Equal(t, "por confirmar", snap.TemplateDefaults.Day)
	require.Equal(t, "agenda_v2", snap.TemplateNames.Interview)
	require.Equal(t, "recordatorio_v1", snap.TemplateNames.Reminder)
	require.Empty(t, snap.TemplateNames.Welcome)
	require.Empty(t, snap.TestNumbers)
}

func TestLoadStrictYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
production: true
workspace: hunter-cl
logging:
  level: debug
storage:
  driver: memory
transport:
  driver: provider
  provider:
    base_url: http://localhost:9000
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Production)
	require.Equal(t, "hunter-cl", cfg.Workspace)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "http://localhost:9000", cfg.Transport.Provider.BaseURL)

	// Unknown fields are rejected.
	require.NoError(t, os.WriteFile(path, []byte("bogus_field: 1\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}
