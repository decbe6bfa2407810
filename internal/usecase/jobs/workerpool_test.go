package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	p := NewWorkerPool(4, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	var ran int32
	for i := 0; i < 100; i++ {
		fail := i%10 == 0
		err := p.Submit(ctx, func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			if fail {
				return errors.New("boom")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	p.Close()

	if got := atomic.LoadInt32(&ran); got != 100 {
		t.Fatalf("expected 100 tasks executed, got %d", got)
	}
	if p.Failed() != 10 {
		t.Fatalf("expected 10 failures, got %d", p.Failed())
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	p.Close()
	if err := p.Submit(ctx, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestSubmitReturnsWhenContextCanceled(t *testing.T) {
	p := NewWorkerPool(1, 1) // workers never started, so the queue stays full
	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Submit(ctx, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("setup submit failed: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- p.Submit(ctx, func(ctx context.Context) error { return nil }) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("submit did not return after cancel")
	}
}
