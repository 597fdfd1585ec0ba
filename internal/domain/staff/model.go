package staff

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctors table.
type Doctor struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name         string     `db:"name" json:"name"`
	Specialty    *string    `db:"specialty" json:"specialty,omitempty"`
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	Available    bool       `db:"available" json:"available"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Member maps to the staff table (nurses, technicians, clerks).
type Member struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name         string     `db:"name" json:"name"`
	Role         *string    `db:"role" json:"role,omitempty"`
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
