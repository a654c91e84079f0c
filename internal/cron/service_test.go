package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/ogp-platform/proforma-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	released int
	grant    bool
	err      error
}

func (l *fakeLock) Acquire(context.Context) (bool, error) {
	l.acquired = true
	return l.grant, l.err
}

func (l *fakeLock) Release(context.Context) error {
	l.released++
	return nil
}

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunCycleExecutesJobsUnderLock(t *testing.T) {
	lock := &fakeLock{grant: true}
	first := &fakeJob{name: "first"}
	second := &fakeJob{name: "second"}
	svc := newTestService(t, lock, first, second)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("expected both jobs to run once, got %d and %d", first.runs, second.runs)
	}
	if lock.released != 1 {
		t.Fatalf("expected lock released once, got %d", lock.released)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLock{grant: false}
	job := &fakeJob{name: "job"}
	svc := newTestService(t, lock, job)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs while lock is held elsewhere, got %d", job.runs)
	}
	if lock.released != 0 {
		t.Fatalf("a lock we never held must not be released")
	}
}

func TestRunCycleJobFailureDoesNotStopOthers(t *testing.T) {
	lock := &fakeLock{grant: true}
	failing := &fakeJob{name: "failing", err: errors.New("boom")}
	healthy := &fakeJob{name: "healthy"}
	svc := newTestService(t, lock, failing, healthy)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if healthy.runs != 1 {
		t.Fatalf("expected healthy job to run after a failure, got %d", healthy.runs)
	}
}

func TestRunCycleLockError(t *testing.T) {
	lock := &fakeLock{err: errors.New("redis down")}
	job := &fakeJob{name: "job"}
	svc := newTestService(t, lock, job)

	if err := svc.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock error to surface")
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs on lock error, got %d", job.runs)
	}
}
