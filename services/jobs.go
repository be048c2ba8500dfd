package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobInfo describes a registered background job
type JobInfo struct {
	Name     string    `json:"name"`
	Spec     string    `json:"spec"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
	LastErr  string    `json:"last_error,omitempty"`
	Running  bool      `json:"running"`
	RunCount int       `json:"run_count"`
}

type job struct {
	name    string
	spec    string
	id      cron.EntryID
	run     func(ctx context.Context) error
	mu      sync.Mutex
	running bool
	lastErr string
	count   int
}

// Scheduler runs the periodic maintenance jobs on a cron timetable.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	jobs []*job
}

// NewScheduler interprets cron specs in loc.
func NewScheduler(ctx context.Context, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cronLogger{}))),
		ctx:  ctx,
	}
}

// Add registers run under spec. An overlapping run is skipped.
func (s *Scheduler) Add(name, spec string, run func(ctx context.Context) error) error {
	j := &job{name: name, spec: spec, run: run}
	id, err := s.cron.AddFunc(spec, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", name, spec, err)
	}
	j.id = id
	s.jobs = append(s.jobs, j)
	return nil
}

// RunNow executes a registered job synchronously.
func (s *Scheduler) RunNow(name string) error {
	for _, j := range s.jobs {
		if j.name == name {
			s.execute(j)
			j.mu.Lock()
			defer j.mu.Unlock()
			if j.lastErr != "" {
				return fmt.Errorf("%s", j.lastErr)
			}
			return nil
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *Scheduler) execute(j *job) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		logrus.WithField("job", j.name).Warn("Previous run still in progress, skipping")
		return
	}
	j.running = true
	j.mu.Unlock()

	start := time.Now()
	err := j.run(s.ctx)

	j.mu.Lock()
	j.running = false
	j.count++
	j.lastErr = ""
	if err != nil {
		j.lastErr = err.Error()
	}
	j.mu.Unlock()

	entry := logrus.WithFields(logrus.Fields{"job": j.name, "duration": time.Since(start).String()})
	if err != nil {
		entry.WithError(err).Error("Job failed")
		return
	}
	entry.Debug("Job finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.WithField("jobs", len(s.jobs)).Info("Background jobs started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Jobs implements JobLister.
func (s *Scheduler) Jobs() []JobInfo {
	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.id)
		j.mu.Lock()
		out = append(out, JobInfo{
			Name:     j.name,
			Spec:     j.spec,
			Next:     entry.Next,
			Prev:     entry.Prev,
			LastErr:  j.lastErr,
			Running:  j.running,
			RunCount: j.count,
		})
		j.mu.Unlock()
	}
	return out
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logrus.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
