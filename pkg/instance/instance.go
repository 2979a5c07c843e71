package instance

import (
	"os"
	"strings"
)

// GetID returns the process instance identifier used to tag logs.
// STOREFRONT_INSTANCE_ID wins over the host name; kind-0 is the fallback.
func GetID(kind string) string {
	if id := strings.TrimSpace(os.Getenv("STOREFRONT_INSTANCE_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	if kind == "" {
		kind = "storefront"
	}
	return kind + "-0"
}
