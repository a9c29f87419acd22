// Package featureflags evaluates on/off and percentage rollout flags.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	PrintPreview     = "print_preview"
	ModerationStream = "moderation_stream"
)

// defaults apply to known flags the configuration leaves out.
var defaults = map[string]string{
	PrintPreview:     "on",
	ModerationStream: "on",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "print_preview=on,moderation_stream=off,new_feed=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		value = normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for an identity.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by identity id, e.g. 25%)
func (m *Manager) Enabled(name, identityID string) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if identityID == "" {
		return false
	}
	return rolloutBucket(name, identityID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one identity.
func (m *Manager) Snapshot(identityID string) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, identityID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, identityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + identityID))
	return int(h.Sum32() % 100)
}
