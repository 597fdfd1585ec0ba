package prediction

import (
	"context"
	"encoding/json"
	"errors"

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

const predictionCols = `id, patient_id, risk_score, high_risk_conditions, explanation, created_at`

func (r *repoPG) Create(ctx context.Context, p *Prediction) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO predictions (id, patient_id, risk_score, high_risk_conditions, explanation)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.PatientID, p.RiskScore, p.HighRiskConditions, p.Explanation,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prediction, error) {
	return scanPrediction(r.conn(ctx).QueryRow(ctx, `SELECT `+predictionCols+` FROM predictions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Prediction) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE predictions SET
			risk_score=$2, high_risk_conditions=$3, explanation=$4
		WHERE id = $1`,
		p.ID, p.RiskScore, p.HighRiskConditions, p.Explanation,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM predictions WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prediction, int, error) {
	qb := query.New().
		EqUUID("patient_id", params["patient_id"]).
		GteNum("risk_score", params["min_risk"]).
		LteNum("risk_score", params["max_risk"]).
		GteTime("created_at", params["from"]).
		LteTime("created_at", params["to"])

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM predictions`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+predictionCols+` FROM predictions`+qb.Where()+` ORDER BY created_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	predictions, err := collectPredictions(rows)
	return predictions, total, err
}

func (r *repoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Prediction, error) {
	p, err := scanPrediction(r.conn(ctx).QueryRow(ctx,
		`SELECT `+predictionCols+` FROM predictions WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`,
		patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repoPG) LatestPerPatient(ctx context.Context, scopeIDs []uuid.UUID) ([]*Prediction, error) {
	qb := query.New()
	if scopeIDs != nil {
		qb.AnyUUID("patient_id", scopeIDs)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT DISTINCT ON (patient_id) `+predictionCols+` FROM predictions`+qb.Where()+` ORDER BY patient_id, created_at DESC`,
		qb.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPredictions(rows)
}

func (r *repoPG) CreateRequestLog(ctx context.Context, l *RequestLog) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prediction_request_log (id, patient_id, requested_by, request_payload, status)
		VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.PatientID, l.RequestedBy, l.RequestPayload, l.Status,
	)
	return err
}

func (r *repoPG) CompleteRequestLog(ctx context.Context, id uuid.UUID, response json.RawMessage) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prediction_request_log SET response_payload=$2, status=$3 WHERE id = $1`,
		id, response, LogComplete,
	)
	return err
}

func scanPrediction(row pgx.Row) (*Prediction, error) {
	var p Prediction
	err := row.Scan(&p.ID, &p.PatientID, &p.RiskScore, &p.HighRiskConditions, &p.Explanation, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPredictions(rows pgx.Rows) ([]*Prediction, error) {
	var predictions []*Prediction
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(&p.ID, &p.PatientID, &p.RiskScore, &p.HighRiskConditions, &p.Explanation, &p.CreatedAt); err != nil {
			return nil, err
		}
		predictions = append(predictions, &p)
	}
	return predictions, rows.Err()
}
