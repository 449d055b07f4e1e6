package outbound

import (
	"strings"

	"github.com/ttacon/libphonenumber"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
)

// defaultRegion interprets numbers written without a country prefix.
const defaultRegion = "CL"

// EffectiveAllowlist is the union of admin, test, and explicit allowlist
// destinations. Each entry is normalized; invalid or empty inputs are
// dropped silently. Order is first-seen, duplicates collapse to one entry.
func EffectiveAllowlist(snap config.Snapshot) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, src := range [][]string{snap.AdminNumbers, snap.TestNumbers, snap.Allowlist} {
		for _, raw := range src {
			d, ok := NormalizeDestination(raw)
			if !ok {
				continue
			}
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// NormalizeDestination canonicalizes a raw destination into one comparable
// form: E.164 for phone numbers, "tg:<chat id>" for telegram chats.
func NormalizeDestination(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if rest, ok := strings.CutPrefix(s, "tg:"); ok {
		id := strings.TrimSpace(rest)
		if id == "" {
			return "", false
		}
		return "tg:" + id, true
	}

	num, err := libphonenumber.Parse(s, defaultRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return "", false
	}
	return libphonenumber.Format(num, libphonenumber.E164), true
}
