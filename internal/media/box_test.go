package media_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/media"
)

func TestBox_RemoveCachedResources(t *testing.T) {
	box, err := media.NewBox(t.TempDir(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewBox() error: %v", err)
	}

	ids := []domain.ResourceID{"photo-1", "photo-2", "doc-3"}
	for _, id := range ids {
		if err := box.Put(id, strings.NewReader("data")); err != nil {
			t.Fatalf("Put(%s) error: %v", id, err)
		}
	}

	box.RemoveCachedResources([]domain.ResourceID{"photo-1", "doc-3", "missing"})
	if err := box.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if box.Has("photo-1") || box.Has("doc-3") {
		t.Error("removed resources still present")
	}
	if !box.Has("photo-2") {
		t.Error("untouched resource removed")
	}
}

func TestBox_PathStaysInDir(t *testing.T) {
	dir := t.TempDir()
	box, err := media.NewBox(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewBox() error: %v", err)
	}
	defer box.Close()

	got := box.Path("../../etc/passwd")
	if !strings.HasPrefix(got, dir) || strings.Contains(got[len(dir):], "..") {
		t.Errorf("Path() = %q escapes %q", got, dir)
	}
}

func TestBox_RemoveAfterClose(t *testing.T) {
	box, err := media.NewBox(t.TempDir(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewBox() error: %v", err)
	}
	box.Close()

	// Must not panic.
	box.RemoveCachedResources([]domain.ResourceID{"x"})
}

func TestBox_RemoveNeverBlocks(t *testing.T) {
	box, err := media.NewBox(t.TempDir(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewBox() error: %v", err)
	}
	defer box.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			box.RemoveCachedResources([]domain.ResourceID{domain.ResourceID(fmt.Sprintf("photo-%d", i))})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RemoveCachedResources blocked on a full queue")
	}
}
