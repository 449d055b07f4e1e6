// Package outbound decides who may be contacted at all. It derives the
// effective sending policy and the effective allowlist from the settings
// snapshot plus the deployment environment, recomputed on every dispatch.
package outbound

import (
	"strings"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
)

// Policy is the outbound sending policy. The zero value is the safe default.
type Policy int

const (
	AllowlistOnly Policy = iota
	AllowAll
	BlockAll
)

func (p Policy) String() string {
	switch p {
	case AllowAll:
		return "allow_all"
	case BlockAll:
		return "block_all"
	default:
		return "allowlist_only"
	}
}

// ParsePolicy matches a stored override case-insensitively against the three
// policy names. Anything else reports ok=false ("not set").
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow_all":
		return AllowAll, true
	case "allowlist_only":
		return AllowlistOnly, true
	case "block_all":
		return BlockAll, true
	default:
		return AllowlistOnly, false
	}
}

// Environment carries the explicit production marker. It is a dedicated type
// so the production signal can never be conflated with an environment-name
// string; names like "prod" are routinely set in staging and must not drive
// this decision.
type Environment struct {
	Production bool
}

func (e Environment) defaultPolicy() Policy {
	if e.Production {
		return AllowAll
	}
	return AllowlistOnly
}

// EffectivePolicy computes the policy for one dispatch.
//
// Safety invariant: a stored ALLOW_ALL override can never escalate a
// non-production deployment; it is forced down to ALLOWLIST_ONLY.
func EffectivePolicy(env Environment, snap config.Snapshot) Policy {
	def := env.defaultPolicy()
	override, ok := ParsePolicy(snap.PolicyOverride)
	if !ok {
		return def
	}
	if override == AllowAll && def != AllowAll {
		return AllowlistOnly
	}
	return override
}

// MayContact reports whether destination (already normalized) is permitted
// under the effective policy.
func MayContact(env Environment, snap config.Snapshot, destination string) bool {
	switch EffectivePolicy(env, snap) {
	case BlockAll:
		return false
	case AllowAll:
		return true
	default:
		for _, d := range EffectiveAllowlist(snap) {
			if d == destination {
				return true
			}
		}
		return false
	}
}
