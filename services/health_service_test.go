package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		current, candidate, want string
	}{
		{overallStatusOK, overallStatusOK, overallStatusOK},
		{overallStatusOK, overallStatusDegraded, overallStatusDegraded},
		{overallStatusDegraded, overallStatusOK, overallStatusDegraded},
		{overallStatusDegraded, overallStatusCritical, overallStatusCritical},
		{overallStatusCritical, overallStatusDegraded, overallStatusCritical},
		{"weird", "unknown", overallStatusOK},
	}
	for _, tt := range tests {
		if got := combineStatus(tt.current, tt.candidate); got != tt.want {
			t.Errorf("combineStatus(%q, %q) = %q, want %q", tt.current, tt.candidate, got, tt.want)
		}
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "2s"},
		{time.Hour, "1h"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "1d 2h 3m 4s"},
	}
	for _, tt := range tests {
		if got := humanizeDuration(tt.in); got != tt.want {
			t.Errorf("humanizeDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type staticJobs []JobInfo

func (s staticJobs) Jobs() []JobInfo { return s }

func TestHealthReportWithoutDependencies(t *testing.T) {
	svc := NewHealthService("", "", nil, nil, staticJobs{{Name: "schedule-sweep"}})
	svc.SetStartTime(time.Now().Add(-90 * time.Second))

	live := svc.Liveness(context.Background())
	assert.Equal(t, overallStatusCritical, live.Status)
	assert.Equal(t, 503, svc.HTTPStatusForOverall(live.Status))
	assert.Equal(t, defaultServiceName, live.Service)
	assert.Len(t, live.Dependencies, 2)
	assert.Nil(t, live.Jobs)

	full := svc.GetHealthReport(context.Background())
	assert.Len(t, full.Dependencies, 4)
	assert.Equal(t, "redis", full.Dependencies[1].Name)
	assert.Equal(t, dependencyStatusDisabled, full.Dependencies[1].Status)
	assert.Len(t, full.Jobs, 1)
	assert.GreaterOrEqual(t, full.UptimeSeconds, 90.0)
	assert.NotEmpty(t, full.System.GoVersion)
}

func TestHTTPStatusForOverall(t *testing.T) {
	svc := NewHealthService("x", "1", nil, nil, nil)
	assert.Equal(t, 200, svc.HTTPStatusForOverall(overallStatusOK))
	assert.Equal(t, 200, svc.HTTPStatusForOverall(overallStatusDegraded))
}
