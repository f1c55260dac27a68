package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/codexbot/internal/bot/tasks"
	"github.com/edgard/codexbot/internal/config"
	"github.com/edgard/codexbot/internal/database"
)

type blockingListener struct {
	started chan struct{}
}

func (l *blockingListener) Start(ctx context.Context) {
	close(l.started)
	<-ctx.Done()
}

type returningListener struct{}

func (returningListener) Start(context.Context) {}

type pingStore struct {
	database.Store
	err error
}

func (s pingStore) Ping(context.Context) error { return s.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noopTask(context.Context) error { return nil }

func newTestScheduler(t *testing.T, cfg *config.SchedulerConfig) *Scheduler {
	t.Helper()
	s, err := NewScheduler(discardLogger(), cfg, map[string]tasks.ScheduledTaskFunc{
		tasks.SQLMaintenanceTask:     noopTask,
		tasks.RegistrationReportTask: noopTask,
	})
	require.NoError(t, err)
	return s
}

func TestRunStopsOnCancel(t *testing.T) {
	listener := &blockingListener{started: make(chan struct{})}
	b := NewBot(discardLogger(), pingStore{}, listener, newTestScheduler(t, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	<-listener.started
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunFailsWhenListenerExits(t *testing.T) {
	b := NewBot(discardLogger(), pingStore{}, returningListener{}, newTestScheduler(t, nil))
	assert.Error(t, b.Run(context.Background()))
}

func TestRunFailsOnUnreachableStore(t *testing.T) {
	storeErr := errors.New("closed")
	b := NewBot(discardLogger(), pingStore{err: storeErr}, returningListener{}, newTestScheduler(t, nil))
	assert.ErrorIs(t, b.Run(context.Background()), storeErr)
}

func TestSchedulerSchedulesEnabledTasksOnly(t *testing.T) {
	s := newTestScheduler(t, &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		tasks.SQLMaintenanceTask:     {Enabled: true, Schedule: "0 0 4 * * *"},
		tasks.RegistrationReportTask: {Enabled: false, Schedule: "0 0 * * * *"},
		"unknown_task":               {Enabled: true, Schedule: "0 0 * * * *"},
	}})

	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{tasks.SQLMaintenanceTask}, s.Jobs())
	assert.Error(t, s.Start(), "second start must fail")
}

func TestSchedulerSkipsInvalidSchedule(t *testing.T) {
	s := newTestScheduler(t, &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		tasks.SQLMaintenanceTask: {Enabled: true, Schedule: "not a cron"},
	}})

	require.NoError(t, s.Start())
	assert.Empty(t, s.Jobs())
	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop(), "stopping twice is a no-op")
}
