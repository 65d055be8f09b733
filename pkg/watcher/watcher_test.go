package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestReloadAfterWriteSettles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.stl")
	if err := os.WriteFile(path, []byte("solid a\nendsolid a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w, err := New(30 * time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	var reloads atomic.Int32
	fired := make(chan string, 4)
	if err := w.Watch(path, func(p string) {
		reloads.Add(1)
		fired <- p
	}); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	w.Start(nil)

	// Several rapid writes should collapse into one reload.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("solid b\nendsolid b\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case got := <-fired:
		abs, _ := filepath.Abs(path)
		if got != abs {
			t.Errorf("Expected reload for %s, got %s", abs, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a reload callback")
	}

	time.Sleep(100 * time.Millisecond)
	if n := reloads.Load(); n != 1 {
		t.Errorf("Expected a single debounced reload, got %d", n)
	}
}

func TestUnregisteredFileIgnored(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.stl")
	other := filepath.Join(dir, "other.stl")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("solid\nendsolid\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	w, err := New(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	fired := make(chan string, 1)
	if err := w.Watch(watched, func(p string) { fired <- p }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	w.Start(nil)

	if err := os.WriteFile(other, []byte("solid x\nendsolid x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case p := <-fired:
		t.Errorf("Unexpected reload for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}
