package metrics

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

const metricCols = `id, patient_id, metric_type, metric_value, unit, metric_date, created_at`

func (r *repoPG) Create(ctx context.Context, m *Metric) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO iot_metrics (id, patient_id, metric_type, metric_value, unit, metric_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.PatientID, m.MetricType, m.MetricValue, m.Unit, m.MetricDate,
	)
	return err
}

func (r *repoPG) CreateBatch(ctx context.Context, ms []*Metric) error {
	batch := &pgx.Batch{}
	for _, m := range ms {
		m.ID = uuid.New()
		batch.Queue(`
			INSERT INTO iot_metrics (id, patient_id, metric_type, metric_value, unit, metric_date)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.PatientID, m.MetricType, m.MetricValue, m.Unit, m.MetricDate,
		)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Metric, int, error) {
	qb := query.New().
		EqUUID("patient_id", params["patient_id"]).
		Eq("metric_type", params["metric_type"]).
		GteTime("metric_date", params["from"]).
		LteTime("metric_date", params["to"])

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM iot_metrics`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+metricCols+` FROM iot_metrics`+qb.Where()+` ORDER BY metric_date DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	metrics, err := collectMetrics(rows)
	return metrics, total, err
}

func (r *repoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Metric, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+metricCols+` FROM iot_metrics WHERE patient_id = $1 ORDER BY metric_date DESC `+query.Page(limit, 0),
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMetrics(rows)
}

func collectMetrics(rows pgx.Rows) ([]*Metric, error) {
	var metrics []*Metric
	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.ID, &m.PatientID, &m.MetricType, &m.MetricValue, &m.Unit, &m.MetricDate, &m.CreatedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, &m)
	}
	return metrics, rows.Err()
}
