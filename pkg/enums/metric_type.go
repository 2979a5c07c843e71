package enums

import "fmt"

// MetricType names a per-product analytics counter.
type MetricType string

const (
	MetricTypeViews     MetricType = "views"
	MetricTypeCartAdds  MetricType = "cart_adds"
	MetricTypePurchases MetricType = "purchases"
)

var validMetricTypeValues = []MetricType{
	MetricTypeViews,
	MetricTypeCartAdds,
	MetricTypePurchases,
}

func (v MetricType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known metric type.
func (v MetricType) IsValid() bool {
	for _, candidate := range validMetricTypeValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseMetricType converts the raw string to MetricType.
func ParseMetricType(value string) (MetricType, error) {
	for _, candidate := range validMetricTypeValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid metric type %q", value)
}
