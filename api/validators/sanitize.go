package validators

import "strings"

// OpaqueID trims value and reports whether it is a usable client-chosen identifier:
// non-empty, at most maxLen bytes, and limited to letters, digits, '-' and '_'.
func OpaqueID(value string, maxLen int) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || (maxLen > 0 && len(trimmed) > maxLen) {
		return trimmed, false
	}
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return trimmed, false
		}
	}
	return trimmed, true
}
