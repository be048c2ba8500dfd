package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), time.UTC)
	err := s.Add("broken", "every tuesday", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestSchedulerRunNow(t *testing.T) {
	s := NewScheduler(context.Background(), time.UTC)
	calls := 0
	require.NoError(t, s.Add("sweep", "5 0 * * *", func(context.Context) error {
		calls++
		return nil
	}))
	require.NoError(t, s.Add("archive", "@hourly", func(context.Context) error {
		return errors.New("bucket missing")
	}))

	require.NoError(t, s.RunNow("sweep"))
	assert.EqualError(t, s.RunNow("archive"), "bucket missing")
	assert.Error(t, s.RunNow("nope"))
	assert.Equal(t, 1, calls)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "sweep", jobs[0].Name)
	assert.Equal(t, 1, jobs[0].RunCount)
	assert.Empty(t, jobs[0].LastErr)
	assert.Equal(t, "bucket missing", jobs[1].LastErr)
}

func TestSchedulerNextRunAfterStart(t *testing.T) {
	s := NewScheduler(context.Background(), time.UTC)
	require.NoError(t, s.Add("sweep", "5 0 * * *", func(context.Context) error { return nil }))
	s.Start()
	defer s.Stop()

	next := s.Jobs()[0].Next
	require.False(t, next.IsZero())
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 5, next.Minute())
}
