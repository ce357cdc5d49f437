package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwulff/chartnote/internal/logger"
)

func TestWatcherReportsArrivalOnce(t *testing.T) {
	inbox := t.TempDir()
	w, err := NewWatcher(inbox, logger.Discard())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()
	w.(*implWatcher).quiet = 50 * time.Millisecond

	arrivals := make(chan string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(_ context.Context, id string) { arrivals <- id })
	}()

	// Give the watch loop a moment to start receiving.
	time.Sleep(20 * time.Millisecond)

	path := filepath.Join(inbox, "P004.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("환자: 코가 막혀요\n")
	f.WriteString("의사: 알레르기 검사를 해보죠\n")
	f.Close()
	os.WriteFile(filepath.Join(inbox, "ignore.md"), []byte("x"), 0o644)

	select {
	case id := <-arrivals:
		if id != "P004" {
			t.Errorf("arrival = %q, want P004", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no arrival reported")
	}

	select {
	case id := <-arrivals:
		t.Errorf("unexpected second arrival %q", id)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), logger.Discard()); err == nil {
		t.Error("expected error for missing inbox")
	}
}
