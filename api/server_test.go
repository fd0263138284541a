package api

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
