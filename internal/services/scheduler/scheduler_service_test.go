package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const validSchedule = "0 0,6,12,18 * * *"

func newTestService() *Service {
	return NewService(arbor.NewNoOpLogger())
}

func TestRegisterJobRejectsDuplicateNames(t *testing.T) {
	s := newTestService()

	require.NoError(t, s.RegisterJob("sweep", validSchedule, "primary sweep", func() error { return nil }))
	err := s.RegisterJob("sweep", validSchedule, "duplicate", func() error { return nil })
	assert.Error(t, err)
}

func TestRegisterJobRejectsEveryMinuteSchedule(t *testing.T) {
	s := newTestService()
	err := s.RegisterJob("too-frequent", "* * * * *", "invalid", func() error { return nil })
	assert.Error(t, err)
}

func TestTriggerJobRunsHandlerImmediately(t *testing.T) {
	s := newTestService()

	var mu sync.Mutex
	ran := false
	require.NoError(t, s.RegisterJob("job", validSchedule, "", func() error {
		mu.Lock()
		ran = true
		mu.Unlock()
		return nil
	}))

	require.NoError(t, s.TriggerJob("job"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ran
	}, time.Second, 5*time.Millisecond)
}

func TestTriggerJobUnregisteredReturnsError(t *testing.T) {
	s := newTestService()
	err := s.TriggerJob("missing")
	assert.Error(t, err)
}

func TestExecuteJobRecordsFailure(t *testing.T) {
	s := newTestService()

	require.NoError(t, s.RegisterJob("failing", validSchedule, "", func() error {
		return errors.New("boom")
	}))

	require.NoError(t, s.TriggerJob("failing"))

	assert.Eventually(t, func() bool {
		status, err := s.GetJobStatus("failing")
		require.NoError(t, err)
		return status.LastError != ""
	}, time.Second, 5*time.Millisecond)

	status, err := s.GetJobStatus("failing")
	require.NoError(t, err)
	assert.Equal(t, "boom", status.LastError)
	assert.False(t, status.IsRunning)
}

func TestExecuteJobRecoversFromPanic(t *testing.T) {
	s := newTestService()

	require.NoError(t, s.RegisterJob("panics", validSchedule, "", func() error {
		panic("unexpected")
	}))

	require.NoError(t, s.TriggerJob("panics"))

	assert.Eventually(t, func() bool {
		status, err := s.GetJobStatus("panics")
		require.NoError(t, err)
		return status.LastError != ""
	}, time.Second, 5*time.Millisecond)

	status, err := s.GetJobStatus("panics")
	require.NoError(t, err)
	assert.Contains(t, status.LastError, "panic")
	assert.False(t, status.IsRunning)
}

func TestDisableJobSkipsExecution(t *testing.T) {
	s := newTestService()

	var mu sync.Mutex
	ran := false
	require.NoError(t, s.RegisterJob("disabled", validSchedule, "", func() error {
		mu.Lock()
		ran = true
		mu.Unlock()
		return nil
	}))

	require.NoError(t, s.DisableJob("disabled"))
	s.executeJob("disabled")

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ran)
}

func TestEnableJobReEnablesExecution(t *testing.T) {
	s := newTestService()
	require.NoError(t, s.RegisterJob("job", validSchedule, "", func() error { return nil }))
	require.NoError(t, s.DisableJob("job"))
	require.NoError(t, s.EnableJob("job"))

	status, err := s.GetJobStatus("job")
	require.NoError(t, err)
	assert.True(t, status.Enabled)
}

func TestGetAllJobStatusesReturnsEveryRegisteredJob(t *testing.T) {
	s := newTestService()
	require.NoError(t, s.RegisterJob("a", validSchedule, "", func() error { return nil }))
	require.NoError(t, s.RegisterJob("b", validSchedule, "", func() error { return nil }))

	statuses := s.GetAllJobStatuses()
	assert.Len(t, statuses, 2)
	assert.Contains(t, statuses, "a")
	assert.Contains(t, statuses, "b")
}

func TestStartStopLifecycle(t *testing.T) {
	s := newTestService()
	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	err := s.Start()
	assert.Error(t, err, "starting an already-running scheduler must fail")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}
