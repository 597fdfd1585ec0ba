package record

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

// -- Medical history --

const historyCols = `id, patient_id, diagnosis, treatment, notes, recorded_at, created_at, updated_at`

func (r *repoPG) CreateHistory(ctx context.Context, h *HistoryEntry) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_history (id, patient_id, diagnosis, treatment, notes, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.PatientID, h.Diagnosis, h.Treatment, h.Notes, h.RecordedAt,
	)
	return err
}

func (r *repoPG) GetHistoryByID(ctx context.Context, id uuid.UUID) (*HistoryEntry, error) {
	return scanHistory(r.conn(ctx).QueryRow(ctx, `SELECT `+historyCols+` FROM medical_history WHERE id = $1`, id))
}

func (r *repoPG) UpdateHistory(ctx context.Context, h *HistoryEntry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_history SET
			diagnosis=$2, treatment=$3, notes=$4, recorded_at=$5, updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Diagnosis, h.Treatment, h.Notes, h.RecordedAt,
	)
	return err
}

func (r *repoPG) DeleteHistory(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_history WHERE id = $1`, id)
	return err
}

func (r *repoPG) SearchHistory(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*HistoryEntry, int, error) {
	qb := query.New().
		EqUUID("patient_id", params["patient_id"]).
		ILike("diagnosis", params["diagnosis"]).
		GteTime("recorded_at", params["from"]).
		LteTime("recorded_at", params["to"])
	if scopeIDs != nil {
		qb.AnyUUID("patient_id", scopeIDs)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_history`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+historyCols+` FROM medical_history`+qb.Where()+` ORDER BY recorded_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.PatientID, &h.Diagnosis, &h.Treatment, &h.Notes, &h.RecordedAt, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &h)
	}
	return entries, total, rows.Err()
}

func scanHistory(row pgx.Row) (*HistoryEntry, error) {
	var h HistoryEntry
	err := row.Scan(&h.ID, &h.PatientID, &h.Diagnosis, &h.Treatment, &h.Notes, &h.RecordedAt, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// -- Visits --

const visitCols = `id, patient_id, doctor_id, visit_date, reason, notes, created_at`

func (r *repoPG) SearchVisits(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	qb := query.New().
		EqUUID("patient_id", params["patient_id"]).
		EqUUID("doctor_id", params["doctor_id"]).
		GteTime("visit_date", params["from"]).
		LteTime("visit_date", params["to"])
	if scopeIDs != nil {
		qb.AnyUUID("patient_id", scopeIDs)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visits`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visits`+qb.Where()+` ORDER BY visit_date DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	visits, err := collectVisits(rows)
	return visits, total, err
}

func (r *repoPG) VisitsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visits WHERE patient_id = $1 ORDER BY visit_date DESC `+query.Page(limit, 0),
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVisits(rows)
}

func collectVisits(rows pgx.Rows) ([]*Visit, error) {
	var visits []*Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.PatientID, &v.DoctorID, &v.VisitDate, &v.Reason, &v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, &v)
	}
	return visits, rows.Err()
}

// -- Prescriptions --

const prescriptionCols = `id, patient_id, medication, dosage, frequency, start_date, end_date, prescribed_by, created_at`

func (r *repoPG) SearchPrescriptions(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	qb := query.New().
		EqUUID("patient_id", params["patient_id"]).
		ILike("medication", params["medication"])
	if scopeIDs != nil {
		qb.AnyUUID("patient_id", scopeIDs)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions`+qb.Where()+` ORDER BY start_date DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	prescriptions, err := collectPrescriptions(rows)
	return prescriptions, total, err
}

func (r *repoPG) PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE patient_id = $1 ORDER BY start_date DESC `+query.Page(limit, 0),
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

func collectPrescriptions(rows pgx.Rows) ([]*Prescription, error) {
	var prescriptions []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.PatientID, &p.Medication, &p.Dosage, &p.Frequency, &p.StartDate, &p.EndDate, &p.PrescribedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, &p)
	}
	return prescriptions, rows.Err()
}

// -- Lab results --

const labCols = `id, patient_id, test_name, file_name, bucket, path, test_date, created_at`

func (r *repoPG) CreateLabResult(ctx context.Context, lr *LabResult) error {
	lr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_results (id, patient_id, test_name, file_name, bucket, path, test_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		lr.ID, lr.PatientID, lr.TestName, lr.FileName, lr.Bucket, lr.Path, lr.TestDate,
	)
	return err
}

func (r *repoPG) SearchLabResults(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*LabResult, int, error) {
	qb := query.New().
		EqUUID("patient_id", params["patient_id"]).
		ILike("test_name", params["test_name"]).
		GteTime("test_date", params["from"]).
		LteTime("test_date", params["to"])
	if scopeIDs != nil {
		qb.AnyUUID("patient_id", scopeIDs)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_results`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_results`+qb.Where()+` ORDER BY test_date DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	results, err := collectLabResults(rows)
	return results, total, err
}

func (r *repoPG) LabResultsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_results WHERE patient_id = $1 ORDER BY test_date DESC `+query.Page(limit, 0),
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLabResults(rows)
}

func collectLabResults(rows pgx.Rows) ([]*LabResult, error) {
	var results []*LabResult
	for rows.Next() {
		var lr LabResult
		if err := rows.Scan(&lr.ID, &lr.PatientID, &lr.TestName, &lr.FileName, &lr.Bucket, &lr.Path, &lr.TestDate, &lr.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &lr)
	}
	return results, rows.Err()
}
