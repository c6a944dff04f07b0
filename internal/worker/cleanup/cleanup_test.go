package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

type mockSessionDeleter struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
	called          bool
}

func (m *mockSessionDeleter) DeleteExpired(ctx context.Context) (int64, error) {
	m.called = true
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type recordingMetrics struct {
	cleaned int64
}

func (r *recordingMetrics) RecordSessionsCleaned(count int64) { r.cleaned += count }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockSessionDeleter{
		deleteExpiredFn: func(ctx context.Context) (int64, error) { return 5, nil },
	}
	metrics := &recordingMetrics{}
	job := NewCleanupJob(deleter, metrics, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !deleter.called {
		t.Error("DeleteExpired was not called")
	}
	if metrics.cleaned != 5 {
		t.Errorf("recorded cleaned = %d, want 5", metrics.cleaned)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["deleted_count"] != float64(5) {
		t.Errorf("deleted_count = %v, want 5", entry["deleted_count"])
	}
}

func TestCleanupJob_Run_NoExpiredSessions_Succeeds(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionDeleter{}, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run should be idempotent, got error: %v", err)
	}
}

func TestCleanupJob_Run_DeleteFailure_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	deleter := &mockSessionDeleter{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("db connection lost")
		},
	}
	job := NewCleanupJob(deleter, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when delete fails, got nil")
	}
}
