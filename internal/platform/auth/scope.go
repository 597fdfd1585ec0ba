package auth

import (
	"context"

	"github.com/google/uuid"
)

// Scope is the set of patient records a caller may touch. An unrestricted
// scope (admin, nurse) carries no id list; a restricted scope with an empty
// list means the caller may see nothing, and aggregation callers must
// short-circuit instead of issuing a query with an empty IN list.
type Scope struct {
	Role         string
	PatientIDs   []uuid.UUID
	Unrestricted bool
}

// Allows reports whether the scope permits access to the given patient.
func (s Scope) Allows(patientID uuid.UUID) bool {
	if s.Unrestricted {
		return true
	}
	for _, id := range s.PatientIDs {
		if id == patientID {
			return true
		}
	}
	return false
}

// Empty reports whether a restricted scope contains no patients at all.
func (s Scope) Empty() bool {
	return !s.Unrestricted && len(s.PatientIDs) == 0
}

// AssignmentSource answers scope queries from the assignment store.
// The patient domain's repository implements it.
type AssignmentSource interface {
	// PatientIDsByDoctor returns the doctor's assignment set, newest first.
	PatientIDsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)
	// PatientIDsByUser returns the patient records owned by a portal user.
	PatientIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// IsAssigned reports whether the doctor holds an assignment for the patient.
	IsAssigned(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// Resolver computes the caller's access scope. Every role gets an explicit
// predicate here; nothing is delegated to an opaque row-level policy.
type Resolver struct {
	src AssignmentSource
}

func NewResolver(src AssignmentSource) *Resolver {
	return &Resolver{src: src}
}

func (r *Resolver) Resolve(ctx context.Context, id Identity) (Scope, error) {
	switch id.Role {
	case RoleAdmin, RoleNurse:
		return Scope{Role: id.Role, Unrestricted: true}, nil
	case RoleDoctor:
		ids, err := r.src.PatientIDsByDoctor(ctx, id.UserID)
		if err != nil {
			return Scope{}, err
		}
		return Scope{Role: id.Role, PatientIDs: ids}, nil
	default: // patient
		ids, err := r.src.PatientIDsByUser(ctx, id.UserID)
		if err != nil {
			return Scope{}, err
		}
		return Scope{Role: id.Role, PatientIDs: ids}, nil
	}
}

// IsAssigned exposes the assignment check for the prediction orchestrator.
func (r *Resolver) IsAssigned(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	return r.src.IsAssigned(ctx, doctorID, patientID)
}
