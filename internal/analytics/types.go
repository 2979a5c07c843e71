package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Delta is one counter increment.
type Delta struct {
	ProductID uuid.UUID
	Metric    enums.MetricType
	Day       time.Time
	Value     int64
}

// SummaryRequest bounds a report by calendar day, inclusive. Zero values are open.
type SummaryRequest struct {
	Start time.Time
	End   time.Time
}

// ProductStats is the per-product funnel.
type ProductStats struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Views          int64           `json:"views"`
	CartAdds       int64           `json:"cart_adds"`
	Purchases      int64           `json:"purchases"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// OrderStats summarises the order ledger.
type OrderStats struct {
	Total     int64           `json:"total"`
	Completed int64           `json:"completed"`
	Pending   int64           `json:"pending"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TimeSeriesPoint is one day of a metric.
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// Summary is the back-office dashboard payload.
type Summary struct {
	Products  []ProductStats    `json:"products"`
	Orders    OrderStats        `json:"orders"`
	Purchases []TimeSeriesPoint `json:"purchases"`
}
