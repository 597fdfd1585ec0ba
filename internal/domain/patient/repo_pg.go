package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/portal/internal/platform/db"
	"github.com/carebridge/portal/internal/platform/query"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, user_id, name, age, gender, diagnosis, risk_score, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, user_id, name, age, gender, diagnosis, risk_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.UserID, p.Name, p.Age, p.Gender, p.Diagnosis, p.RiskScore,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			user_id=$2, name=$3, age=$4, gender=$5, diagnosis=$6, risk_score=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.UserID, p.Name, p.Age, p.Gender, p.Diagnosis, p.RiskScore,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	qb := query.New().
		EqUUID("id", params["id"]).
		ILike("name", params["name"]).
		ILike("diagnosis", params["diagnosis"]).
		GteNum("risk_score", params["min_risk"]).
		LteNum("risk_score", params["max_risk"])
	if scopeIDs != nil {
		qb.AnyUUID("id", scopeIDs)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients`+qb.Where()+` ORDER BY created_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) Count(ctx context.Context, scopeIDs []uuid.UUID) (int, error) {
	qb := query.New()
	if scopeIDs != nil {
		qb.AnyUUID("id", scopeIDs)
	}
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+qb.Where(), qb.Args()...).Scan(&total)
	return total, err
}

// Assignments

func (r *repoPG) Assign(ctx context.Context, a *Assignment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_patient_map (id, doctor_id, patient_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (doctor_id, patient_id) DO NOTHING`,
		a.ID, a.DoctorID, a.PatientID,
	)
	return err
}

func (r *repoPG) Unassign(ctx context.Context, doctorID, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM doctor_patient_map WHERE doctor_id = $1 AND patient_id = $2`,
		doctorID, patientID)
	return err
}

func (r *repoPG) SearchAssigned(ctx context.Context, doctorID uuid.UUID, search string, limit, offset int) ([]*Patient, int, error) {
	qb := query.New().EqUUID("m.doctor_id", doctorID.String()).ILike("p.name", search)

	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patients p
		JOIN doctor_patient_map m ON m.patient_id = p.id`+qb.Where(), qb.Args()...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.user_id, p.name, p.age, p.gender, p.diagnosis, p.risk_score, p.created_at, p.updated_at
		FROM patients p
		JOIN doctor_patient_map m ON m.patient_id = p.id`+qb.Where()+`
		ORDER BY m.assigned_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

// Scope queries

func (r *repoPG) PatientIDsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT patient_id FROM doctor_patient_map WHERE doctor_id = $1 ORDER BY assigned_at DESC`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (r *repoPG) PatientIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id FROM patients WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (r *repoPG) IsAssigned(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctor_patient_map WHERE doctor_id = $1 AND patient_id = $2)`,
		doctorID, patientID).Scan(&exists)
	return exists, err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Age, &p.Gender, &p.Diagnosis, &p.RiskScore, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Age, &p.Gender, &p.Diagnosis, &p.RiskScore, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
