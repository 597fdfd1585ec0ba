package notification

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

const notificationCols = `id, recipient_user_id, title, body, meta, read, created_at`

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notifications (id, recipient_user_id, title, body, meta, read)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		n.ID, n.RecipientUserID, n.Title, n.Body, n.Meta, n.Read,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+notificationCols+` FROM notifications WHERE id = $1`, id).
		Scan(&n.ID, &n.RecipientUserID, &n.Title, &n.Body, &n.Meta, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) Update(ctx context.Context, n *Notification) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE notifications SET title=$2, body=$3, meta=$4, read=$5 WHERE id = $1`,
		n.ID, n.Title, n.Body, n.Meta, n.Read,
	)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Notification, int, error) {
	qb := query.New().
		EqUUID("recipient_user_id", params["recipient_user_id"]).
		EqBool("read", params["read"])

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+qb.Where(), qb.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+notificationCols+` FROM notifications`+qb.Where()+` ORDER BY created_at DESC `+query.Page(limit, offset),
		qb.Args()...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ns []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientUserID, &n.Title, &n.Body, &n.Meta, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		ns = append(ns, &n)
	}
	return ns, total, rows.Err()
}
