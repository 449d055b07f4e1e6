package outbound

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
)

func TestParsePolicyCaseInsensitive(t *testing.T) {
	p, ok := ParsePolicy("ALLOW_ALL")
	require.True(t, ok)
	require.Equal(t, AllowAll, p)

	p, ok = ParsePolicy("  Block_All ")
	require.True(t, ok)
	require.Equal(t, BlockAll, p)

	_, ok = ParsePolicy("send-to-everyone")
	require.False(t, ok)
	_, ok = ParsePolicy("")
	require.False(t, ok)
}

func TestEffectivePolicyDefaults(t *testing.T) {
	require.Equal(t, AllowlistOnly, EffectivePolicy(Environment{}, config.Snapshot{}))
	require.Equal(t, AllowAll, EffectivePolicy(Environment{Production: true}, config.Snapshot{}))
}

func TestEffectivePolicyGuardrail(t *testing.T) {
	// A stored ALLOW_ALL may never escalate a non-production deployment.
	snap := config.Snapshot{PolicyOverride: "allow_all"}
	require.Equal(t, AllowlistOnly, EffectivePolicy(Environment{}, snap))

	// In production the same override is honored.
	require.Equal(t, AllowAll, EffectivePolicy(Environment{Production: true}, snap))

	// Restrictive overrides always apply.
	snap = config.Snapshot{PolicyOverride: "BLOCK_ALL"}
	require.Equal(t, BlockAll, EffectivePolicy(Environment{Production: true}, snap))
}

func TestNormalizeDestination(t *testing.T) {
	d, ok := NormalizeDestination("+56 9 6123 4567")
	require.True(t, ok)
	require.Equal(t, "+56961234567", d)

	// Region default applies to bare national numbers.
	d, ok = NormalizeDestination("961234567")
	require.True(t, ok)
	require.Equal(t, "+56961234567", d)

	d, ok = NormalizeDestination("tg: 12345")
	require.True(t, ok)
	require.Equal(t, "tg:12345", d)

	_, ok = NormalizeDestination("")
	require.False(t, ok)
	_, ok = NormalizeDestination("not a number")
	require.False(t, ok)
	_, ok = NormalizeDestination("tg:")
	require.False(t, ok)
}

func TestEffectiveAllowlistUnionDedup(t *testing.T) {
	snap := config.Snapshot{
		// Same number in two formats via two sources: one entry.
		AdminNumbers: []string{"+56 9 6123 4567", "garbage"},
		TestNumbers:  []string{"961234567", "+56972345678"},
		Allowlist:    []string{"tg:77", "+56972345678"},
	}
	got := EffectiveAllowlist(snap)
	require.Equal(t, []string{"+56961234567", "+56972345678", "tg:77"}, got)
}

func TestMayContact(t *testing.T) {
	snap := config.Snapshot{AdminNumbers: []string{"+56961234567"}}

	require.True(t, MayContact(Environment{}, snap, "+56961234567"))
	require.False(t, MayContact(Environment{}, snap, "+56972345678"))

	require.True(t, MayContact(Environment{Production: true}, snap, "+56972345678"))

	snap.PolicyOverride = "block_all"
	require.False(t, MayContact(Environment{Production: true}, snap, "+56961234567"))
}
