package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger := NewLogger("production", dir)

	logger.Info("hello from test")
	_ = logger.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "groupmate.*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestNewLoggerWithoutDir(t *testing.T) {
	assert.NotNil(t, NewLogger("development", ""))
}

type fakeReminders struct {
	calls int
	err   error
}

func (f *fakeReminders) RunOnce(context.Context) (int, error) {
	f.calls++
	return 2, f.err
}

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler(&fakeReminders{}, "every morning", time.UTC, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse reminder schedule")
}

func TestSchedulerSendReminders(t *testing.T) {
	tests := []struct {
		name      string
		cancelled bool
		err       error
		wantCalls int
	}{
		{name: "success", wantCalls: 1},
		{name: "failure is logged", err: errors.New("backend down"), wantCalls: 1},
		{name: "skipped after shutdown", cancelled: true, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeReminders{err: tt.err}
			s, err := NewScheduler(runner, "0 9 * * *", time.UTC, zap.NewNop())
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancelled {
				cancel()
			}
			defer cancel()

			s.sendReminders(ctx)
			assert.Equal(t, tt.wantCalls, runner.calls)
		})
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewScheduler(&fakeReminders{}, "0 9 * * *", nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestServerRoutes(t *testing.T) {
	var hits int
	webhook := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	})
	s := NewServer(":0", "/tg/hook", webhook, zap.NewNop())

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"webhook post", http.MethodPost, "/tg/hook", http.StatusOK},
		{"webhook get", http.MethodGet, "/tg/hook", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodPost, "/other", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, 1, hits)
}
