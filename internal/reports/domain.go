package reports

import "time"

// OrderSummaryRow aggregates orders by status inside a date range.
type OrderSummaryRow struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

// DispatchSummaryRow aggregates dispatches by status.
type DispatchSummaryRow struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// TopProductRow is a best-seller line over delivered orders.
type TopProductRow struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Units       int     `json:"units"`
	Revenue     float64 `json:"revenue"`
}

// Range bounds a report period. Zero values mean unbounded.
type Range struct {
	From time.Time
	To   time.Time
}
