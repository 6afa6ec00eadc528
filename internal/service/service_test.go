package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestService_ReturnsRunError(t *testing.T) {
	want := errors.New("command failed")
	svc := New(func(ctx context.Context) error { return want })

	if err := svc.Run(context.Background()); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestService_StopCancelsRunFunc(t *testing.T) {
	started := make(chan struct{})
	svc := New(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(context.Background()) }()

	<-started
	svc.Stop()
	svc.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestService_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := New(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()
	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
