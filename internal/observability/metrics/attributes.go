package metrics

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var sensitiveMetricKeys = []string{
	"password",
	"secret",
	"token",
	"private_key",
	"authorization",
}

// FilterAttributes drops attributes whose keys look sensitive.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if isSensitiveMetricKey(string(attr.Key)) {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

func isSensitiveMetricKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveMetricKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}
