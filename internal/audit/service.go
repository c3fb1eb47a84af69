package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/digitalogic/catalog/pkg/rest"
	"go.uber.org/zap"
)

type Service interface {
	// Log appends an activity record. It is best-effort: failures are logged
	// and swallowed so a broken side channel never fails the triggering
	// operation. Returns the entry id, 0 on failure.
	Log(ctx context.Context, action, objectType string, objectID int64, oldValue, newValue any) int64

	List(ctx context.Context, filter Filter) (*ListOutput, *rest.ApiErr)

	// Prune deletes entries older than the retention window.
	Prune(ctx context.Context, retentionDays int) (int64, error)
}

type svc struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &svc{repo: repo, logger: logger}
}

func (s *svc) Log(ctx context.Context, action, objectType string, objectID int64, oldValue, newValue any) int64 {
	info := RequestInfoFrom(ctx)

	entry := Entry{
		UserID:     info.UserID,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		OldValue:   serialize(oldValue),
		NewValue:   serialize(newValue),
		IPAddress:  info.IPAddress,
		UserAgent:  info.UserAgent,
	}

	id, err := s.repo.Insert(ctx, entry)
	if err != nil {
		s.logger.Warn("failed to write audit entry",
			zap.String("action", action),
			zap.String("object_type", objectType),
			zap.Int64("object_id", objectID),
			zap.Error(err),
		)
		return 0
	}
	return id
}

func serialize(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func (s *svc) List(ctx context.Context, filter Filter) (*ListOutput, *rest.ApiErr) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", zap.Error(err))
		return nil, rest.NewInternalServerError("failed to query activity logs")
	}
	if logs == nil {
		logs = []Entry{}
	}

	return &ListOutput{Logs: logs, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *svc) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info("pruned audit logs",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
