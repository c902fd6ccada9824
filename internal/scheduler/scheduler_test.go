package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ncc-attendance-api/internal/service"
	"github.com/noah-isme/ncc-attendance-api/pkg/config"
)

type fakeDispatcher struct {
	mu         sync.Mutex
	weeklyRuns   int
	dailyRuns    int
	summary      *service.DispatchSummary
	dailySummary *service.DispatchSummary
	dailyErr     error
}

func (f *fakeDispatcher) SendWeeklyAll(_ context.Context) *service.DispatchSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weeklyRuns++
	if f.summary != nil {
		return f.summary
	}
	return &service.DispatchSummary{Sent: []string{"CSE"}}
}

func (f *fakeDispatcher) SendDailyParadeReports(_ context.Context, _ time.Time) (*service.DispatchSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dailyRuns++
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	if f.dailySummary != nil {
		return f.dailySummary, nil
	}
	return &service.DispatchSummary{Sent: []string{"Morning Drill/CSE"}}, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs map[string][]error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{runs: make(map[string][]error)}
}

func (f *fakeRecorder) RecordSchedulerRun(job string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[job] = append(f.runs[job], err)
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{Enabled: true, WeeklySpec: "0 9 * * 1", DailySpec: "0 17 * * *"}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.WeeklySpec = "not a cron spec"

	_, err := New(&fakeDispatcher{}, nil, cfg, nil)
	require.Error(t, err)
}

func TestSchedulerWeeklyRecordsOutcome(t *testing.T) {
	recorder := newFakeRecorder()
	dispatcher := &fakeDispatcher{}
	s, err := New(dispatcher, recorder, testSchedulerConfig(), nil)
	require.NoError(t, err)

	s.runWeekly()
	require.Len(t, recorder.runs["weekly_reports"], 1)
	assert.NoError(t, recorder.runs["weekly_reports"][0])

	dispatcher.summary = &service.DispatchSummary{
		Sent:   []string{"CSE"},
		Failed: []service.DispatchFailure{{Branch: "ECE", Reason: "boom"}},
	}
	s.runWeekly()
	require.Len(t, recorder.runs["weekly_reports"], 2)
	assert.Error(t, recorder.runs["weekly_reports"][1])
	assert.Equal(t, 2, dispatcher.weeklyRuns)
}

func TestSchedulerDailyRecordsFailure(t *testing.T) {
	recorder := newFakeRecorder()
	dispatcher := &fakeDispatcher{dailyErr: errors.New("smtp down")}
	s, err := New(dispatcher, recorder, testSchedulerConfig(), nil)
	require.NoError(t, err)

	s.runDaily()
	require.Len(t, recorder.runs["daily_reports"], 1)
	assert.Error(t, recorder.runs["daily_reports"][0])
	assert.Equal(t, 1, dispatcher.dailyRuns)
}

func TestSchedulerDailyRecordsPartialFailure(t *testing.T) {
	recorder := newFakeRecorder()
	dispatcher := &fakeDispatcher{dailySummary: &service.DispatchSummary{
		Sent:   []string{"Morning Drill/CSE"},
		Failed: []service.DispatchFailure{{Branch: "Morning Drill/CE", Reason: "no department address"}},
	}}
	s, err := New(dispatcher, recorder, testSchedulerConfig(), nil)
	require.NoError(t, err)

	s.runDaily()
	require.Len(t, recorder.runs["daily_reports"], 1)
	assert.Error(t, recorder.runs["daily_reports"][0])
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := New(&fakeDispatcher{}, nil, testSchedulerConfig(), nil)
	require.NoError(t, err)

	s.Start()
	s.Stop()
}
