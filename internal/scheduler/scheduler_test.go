package scheduler

import (
	"context"
	"errors"
	"testing"
)

type countingPurger struct {
	calls int
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int, error) {
	p.calls++
	return 2, p.err
}

func TestPurgeExpired(t *testing.T) {
	p := &countingPurger{}
	s := New(context.Background(), p, nil)

	s.purgeExpired()
	if p.calls != 1 {
		t.Errorf("Expected 1 purge, got %d", p.calls)
	}

	p.err = errors.New("database locked")
	s.purgeExpired()
	if p.calls != 2 {
		t.Errorf("Expected failed purge to still be attempted, got %d calls", p.calls)
	}
}

func TestPurgeSkippedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &countingPurger{}
	New(ctx, p, nil).purgeExpired()
	if p.calls != 0 {
		t.Errorf("Expected no purge after cancellation, got %d", p.calls)
	}
}

func TestStartStop(t *testing.T) {
	s := New(context.Background(), &countingPurger{}, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	if len(s.cron.Entries()) != 1 {
		t.Errorf("Expected 1 cron entry, got %d", len(s.cron.Entries()))
	}
	s.Stop()
}
