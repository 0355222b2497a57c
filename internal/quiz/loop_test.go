package quiz

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		n := i
		l.Post(func() { got <- n })
	}
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	for want := 1; want <= 3; want++ {
		select {
		case n := <-got:
			if n != want {
				t.Fatalf("expected task %d, got %d", want, n)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for task %d", want)
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoopPostAfterCloseDoesNotBlock(t *testing.T) {
	l := NewLoop(1)
	l.Post(func() {})
	l.Close()
	finished := make(chan struct{})
	go func() {
		l.Post(func() {})
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("post blocked after close")
	}
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("expected nil after close, got %v", err)
	}
}
