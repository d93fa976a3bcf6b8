package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rmarchetti/stockroom-backend/pkg/logger"
)

type fakeLock struct {
	allow    bool
	acquires int
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquires++
	return f.allow, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func testCronLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestRunCycleExecutesAllJobsAndReleasesLock(t *testing.T) {
	lock := &fakeLock{allow: true}
	first := &countingJob{name: "first"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	last := &countingJob{name: "last"}

	svc, err := NewService(ServiceParams{
		Logger:   testCronLogger(),
		Registry: NewRegistry(first, failing, last),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	// A failing job must not stop the ones after it.
	for _, job := range []*countingJob{first, failing, last} {
		if job.runs != 1 {
			t.Fatalf("job %s ran %d times", job.name, job.runs)
		}
	}
	if lock.releases != 1 {
		t.Fatalf("lock released %d times", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeldElsewhere(t *testing.T) {
	lock := &fakeLock{allow: false}
	job := &countingJob{name: "job"}

	svc, err := NewService(ServiceParams{
		Logger:   testCronLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatal("a lock we never acquired must not be released")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	lock := &fakeLock{allow: true}
	svc, err := NewService(ServiceParams{
		Logger:   testCronLogger(),
		Lock:     lock,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "real"})
	registry.Register(nil)
	if len(registry.Jobs()) != 1 {
		t.Fatalf("expected 1 job, got %d", len(registry.Jobs()))
	}
}
