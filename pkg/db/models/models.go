package models

// All lists every persisted model, in foreign-key order.
func All() []any {
	return []any{
		&Product{},
		&Order{},
		&Invoice{},
		&Setting{},
		&AnalyticsCounter{},
		&Account{},
		&CheckoutStep{},
	}
}
