package confections

import "time"

// ConfectionStatus is the lifecycle of a production job at a workshop.
type ConfectionStatus string

const (
	StatusAssigned   ConfectionStatus = "asignada"
	StatusInProgress ConfectionStatus = "en_proceso"
	StatusDone       ConfectionStatus = "terminada"
)

func (s ConfectionStatus) IsValid() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// CanTransitionTo only allows forward movement through the job.
func (s ConfectionStatus) CanTransitionTo(next ConfectionStatus) bool {
	switch s {
	case StatusAssigned:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusDone
	}
	return false
}

// Confection is a production job: a batch of garments assigned to a
// workshop against an order.
type Confection struct {
	ID           int64            `json:"id"`
	OrderID      int64            `json:"order_id"`
	OrderNumber  string           `json:"order_number,omitempty"`
	WorkshopID   int64            `json:"workshop_id"`
	WorkshopName string           `json:"workshop_name,omitempty"`
	Description  string           `json:"description"`
	Quantity     int              `json:"quantity"`
	Status       ConfectionStatus `json:"status"`
	Materials    []MaterialUsage  `json:"materials,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// MaterialUsage records fabric and supplies consumed by a job. Entries
// are append-only; corrections are new entries with negative amounts.
type MaterialUsage struct {
	ID           int64     `json:"id"`
	ConfectionID int64     `json:"confection_id"`
	Material     string    `json:"material"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	RecordedBy   int64     `json:"recorded_by"`
	RecordedAt   time.Time `json:"recorded_at"`
}
