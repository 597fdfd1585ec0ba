package staff

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

const doctorCols = `id, user_id, name, specialty, department_id, available, created_at, updated_at`

func (r *repoPG) CreateDoctor(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, user_id, name, specialty, department_id, available)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.UserID, d.Name, d.Specialty, d.DepartmentID, d.Available,
	)
	return err
}

func (r *repoPG) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) UpdateDoctor(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET
			user_id=$2, name=$3, specialty=$4, department_id=$5, available=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.UserID, d.Name, d.Specialty, d.DepartmentID, d.Available,
	)
	return err
}

func (r *repoPG) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	return err
}

func (r *repoPG) SearchDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	qb := query.New().
		ILike("name", params["name"]).
		ILike("specialty", params["specialty"]).
		EqUUID("department_id", params["department_id"])

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctors`+qb.Where()+` ORDER BY created_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialty, &d.DepartmentID, &d.Available, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, total, rows.Err()
}

const memberCols = `id, user_id, name, role, department_id, created_at, updated_at`

func (r *repoPG) CreateMember(ctx context.Context, m *Member) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, user_id, name, role, department_id)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.UserID, m.Name, m.Role, m.DepartmentID,
	)
	return err
}

func (r *repoPG) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	return scanMember(r.conn(ctx).QueryRow(ctx, `SELECT `+memberCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) UpdateMember(ctx context.Context, m *Member) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			user_id=$2, name=$3, role=$4, department_id=$5, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.UserID, m.Name, m.Role, m.DepartmentID,
	)
	return err
}

func (r *repoPG) DeleteMember(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	return err
}

func (r *repoPG) SearchMembers(ctx context.Context, params map[string]string, limit, offset int) ([]*Member, int, error) {
	qb := query.New().
		ILike("name", params["name"]).
		Eq("role", params["role"]).
		EqUUID("department_id", params["department_id"])

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+memberCols+` FROM staff`+qb.Where()+` ORDER BY created_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Role, &m.DepartmentID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, &m)
	}
	return members, total, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialty, &d.DepartmentID, &d.Available, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Role, &m.DepartmentID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
