package metrics

import (
	"time"

	"github.com/google/uuid"
)

// Metric maps to the iot_metrics table. Rows arrive from bedside devices
// and wearables, usually in batches.
type Metric struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	MetricType  string    `db:"metric_type" json:"metric_type"`
	MetricValue float64   `db:"metric_value" json:"metric_value"`
	Unit        *string   `db:"unit" json:"unit,omitempty"`
	MetricDate  time.Time `db:"metric_date" json:"metric_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DefaultListLimit is the metrics page size when the caller does not ask
// for one. Device feeds are dense, so it is larger than the portal default.
const DefaultListLimit = 100
