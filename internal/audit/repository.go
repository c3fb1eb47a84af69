package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/digitalogic/catalog/internal/database/postgres"
)

type Repository interface {
	Insert(ctx context.Context, entry Entry) (int64, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry Entry) (int64, error) {
	var objectID *int64
	if entry.ObjectID != 0 {
		objectID = &entry.ObjectID
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, action, object_type, object_id, old_value, new_value, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		entry.UserID, entry.Action, entry.ObjectType, objectID,
		entry.OldValue, entry.NewValue, entry.IPAddress, entry.UserAgent, time.Now(),
	).Scan(&id)
	return id, err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	conds := []string{"1=1"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		conds = append(conds, "user_id = "+arg(filter.UserID))
	}
	if filter.Action != "" {
		conds = append(conds, "action = "+arg(filter.Action))
	}
	if filter.ObjectType != "" {
		conds = append(conds, "object_type = "+arg(filter.ObjectType))
	}
	if filter.ObjectID != 0 {
		conds = append(conds, "object_id = "+arg(filter.ObjectID))
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, action, object_type, COALESCE(object_id, 0),
			COALESCE(old_value, ''), COALESCE(new_value, ''), ip_address, user_agent, created_at
		FROM audit_logs
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "), len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Action, &e.ObjectType, &e.ObjectID,
			&e.OldValue, &e.NewValue, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM audit_logs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
