package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name      string     `db:"name" json:"name"`
	Age       *int       `db:"age" json:"age,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Diagnosis *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	RiskScore float64    `db:"risk_score" json:"risk_score"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Assignment maps to the doctor_patient_map table. The set of assignments
// for a doctor is that doctor's access scope.
type Assignment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
