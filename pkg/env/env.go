package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable the services read.
const Prefix = "STOREFRONT_"

// Get resolves STOREFRONT_<key> first and the bare key second, so process-level
// variables such as LOG_FORMAT keep working alongside the prefixed form.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
