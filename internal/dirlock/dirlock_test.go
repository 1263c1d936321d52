package dirlock

import (
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestAcquireWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		first.Release()
	}()

	start := time.Now()
	second, err := Acquire(path)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer second.Release()
	if time.Since(start) < 20*time.Millisecond {
		t.Error("second Acquire returned before the first lock was released")
	}
}

func TestAcquireFailsOnMissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-parent", "lock")
	if _, err := Acquire(path); err == nil {
		t.Fatal("expected an error when the parent directory doesn't exist")
	}
}
