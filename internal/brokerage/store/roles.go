package store

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoRoles is returned when a user would be stored without any role.
var ErrNoRoles = errors.New("store: at least one role is required")

// DecodeRoles turns the stored roles column into a clean list. The column
// normally holds a JSON array, but older rows carry a bare role name
// ("admin") or a comma separated list; all shapes decode the same way.
// Roles are trimmed, lowercased and de-duplicated in order.
func DecodeRoles(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var list []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			list = nil
		}
	}
	if list == nil {
		var scalar string
		if err := json.Unmarshal([]byte(raw), &scalar); err == nil {
			raw = scalar
		}
		list = strings.Split(strings.Trim(raw, "[]"), ",")
	}

	return NormalizeRoles(list)
}

// EncodeRoles normalises roles and renders them as a JSON array.
func EncodeRoles(roles []string) (string, error) {
	norm := NormalizeRoles(roles)
	if len(norm) == 0 {
		return "", ErrNoRoles
	}

	b, err := json.Marshal(norm)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NormalizeRoles trims, lowercases and de-duplicates roles, dropping empties.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.Trim(strings.TrimSpace(r), `"`))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
