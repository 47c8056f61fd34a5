package session_test

import (
	"errors"
	"os"
	"testing"

	"recut/internal/session"
)

func TestAcquireLockExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	lock, err := session.AcquireLock(dir, "abc")
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if _, err := session.AcquireLock(dir, "abc"); !errors.Is(err, session.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	other, err := session.AcquireLock(dir, "other")
	if err != nil {
		t.Fatalf("independent session lock failed: %v", err)
	}
	defer other.Release()

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(lock.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err = %v", err)
	}
	again, err := session.AcquireLock(dir, "abc")
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	_ = again.Release()
}

func TestAcquireLockRequiresID(t *testing.T) {
	if _, err := session.AcquireLock(t.TempDir(), " "); err == nil {
		t.Fatal("expected error for empty id")
	}
}
