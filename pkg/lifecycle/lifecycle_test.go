package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwhitson/banter/pkg/lifecycle"
)

func TestStartup(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	lc.OnStartup(func() { count.Add(1) })
	lc.OnStartup(func() { count.Add(1) })

	if lc.Ready() {
		t.Error("Ready() = true before WaitForStartup")
	}

	lc.WaitForStartup()

	if count.Load() != 2 {
		t.Errorf("startup hooks ran %d times, want 2", count.Load())
	}
	if !lc.Ready() {
		t.Error("Ready() = false after WaitForStartup")
	}
}

func TestShutdown(t *testing.T) {
	t.Run("hooks run on cancel", func(t *testing.T) {
		lc := lifecycle.New()

		var cleaned atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			cleaned.Store(true)
		})

		if err := lc.Shutdown(time.Second); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
		if !cleaned.Load() {
			t.Error("shutdown hook did not run")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		lc := lifecycle.New()
		lc.Shutdown(time.Second)

		select {
		case <-lc.Context().Done():
		default:
			t.Error("context not cancelled after Shutdown")
		}
	})

	t.Run("slow hook times out", func(t *testing.T) {
		lc := lifecycle.New()

		release := make(chan struct{})
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			<-release
		})

		err := lc.Shutdown(10 * time.Millisecond)
		close(release)
		if err == nil {
			t.Error("Shutdown() error = nil for hook exceeding timeout")
		}
	})
}
