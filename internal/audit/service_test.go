package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// mockRepo implements Repository in memory
type mockRepo struct {
	mu        sync.Mutex
	entries   []Entry
	insertErr error
}

func (m *mockRepo) Insert(ctx context.Context, entry Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return entry.ID, nil
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func (m *mockRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []Entry
	var deleted int64
	for _, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return deleted, nil
}

func TestLogCapturesRequestInfo(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zap.NewNop())

	ctx := WithRequestInfo(context.Background(), RequestInfo{
		UserID:    "u-1",
		IPAddress: "10.0.0.5",
		UserAgent: "test-agent",
	})

	id := svc.Log(ctx, ActionUpdateProduct, ObjectProduct, 42, "before", "after")
	if id == 0 {
		t.Fatal("expected a log entry id")
	}

	entry := repo.entries[0]
	if entry.UserID != "u-1" || entry.IPAddress != "10.0.0.5" || entry.UserAgent != "test-agent" {
		t.Errorf("request info not captured: %+v", entry)
	}
	if entry.Action != ActionUpdateProduct || entry.ObjectID != 42 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.OldValue != "before" || entry.NewValue != "after" {
		t.Errorf("string values should pass through unchanged: %+v", entry)
	}
}

func TestLogSerializesStructuredValues(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zap.NewNop())

	svc.Log(context.Background(), ActionBulkUpdate, ObjectProduct, 0, nil, map[string]int{"success": 3})

	entry := repo.entries[0]
	if entry.OldValue != "" {
		t.Errorf("nil old value should serialize to empty, got %q", entry.OldValue)
	}
	if entry.NewValue != `{"success":3}` {
		t.Errorf("new value = %q", entry.NewValue)
	}
}

func TestLogIsBestEffort(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("db down")}
	svc := NewService(repo, zap.NewNop())

	if id := svc.Log(context.Background(), ActionUpdateProduct, ObjectProduct, 1, nil, nil); id != 0 {
		t.Errorf("failed log should return 0, got %d", id)
	}
}

func TestPruneDeletesOldEntries(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zap.NewNop())

	repo.entries = []Entry{
		{ID: 1, CreatedAt: time.Now().AddDate(0, 0, -120)},
		{ID: 2, CreatedAt: time.Now().AddDate(0, 0, -10)},
	}

	deleted, err := svc.Prune(context.Background(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if len(repo.entries) != 1 || repo.entries[0].ID != 2 {
		t.Errorf("wrong entries kept: %+v", repo.entries)
	}
}

func TestPruneDefaultsRetention(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zap.NewNop())

	repo.entries = []Entry{{ID: 1, CreatedAt: time.Now().AddDate(0, 0, -100)}}

	deleted, err := svc.Prune(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("zero retention should fall back to 90 days, deleted = %d", deleted)
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zap.NewNop())

	out, apiErr := svc.List(context.Background(), Filter{Limit: -5})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if out.Limit != 100 {
		t.Errorf("limit = %d, want default 100", out.Limit)
	}

	out, apiErr = svc.List(context.Background(), Filter{Limit: 5000})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if out.Limit != 1000 {
		t.Errorf("limit = %d, want cap 1000", out.Limit)
	}
}
