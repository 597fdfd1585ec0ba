package record

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry maps to the medical_history table.
type HistoryEntry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Diagnosis  string    `db:"diagnosis" json:"diagnosis"`
	Treatment  *string   `db:"treatment" json:"treatment,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Visit maps to the visits table. Visits are written by an external intake
// system and read here for the patient dashboard.
type Visit struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	VisitDate time.Time  `db:"visit_date" json:"visit_date"`
	Reason    *string    `db:"reason" json:"reason,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Prescription maps to the prescriptions table, read-only for the dashboard.
type Prescription struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Medication   string     `db:"medication" json:"medication"`
	Dosage       *string    `db:"dosage" json:"dosage,omitempty"`
	Frequency    *string    `db:"frequency" json:"frequency,omitempty"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	PrescribedBy *uuid.UUID `db:"prescribed_by" json:"prescribed_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// LabResult maps to the lab_results table. The file bytes live in the blob
// store under Bucket/Path; this row is the metadata registered after upload.
type LabResult struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	TestName  *string   `db:"test_name" json:"test_name,omitempty"`
	FileName  string    `db:"file_name" json:"file_name"`
	Bucket    string    `db:"bucket" json:"bucket"`
	Path      string    `db:"path" json:"path"`
	TestDate  time.Time `db:"test_date" json:"test_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LabBucket is the logical bucket lab result uploads land in.
const LabBucket = "lab-results"
