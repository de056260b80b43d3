package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLockExclusive(t *testing.T) {
	lm, err := NewLockManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := lm.TryLock("/wiki", time.Second); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if !lm.IsLocked("/wiki") {
		t.Fatalf("expected /wiki to be locked")
	}
	if err := lm.TryLock("/wiki", 150*time.Millisecond); err == nil {
		t.Fatalf("expected second lock to time out")
	}
	if err := lm.TryLock("/other", time.Second); err != nil {
		t.Fatalf("lock on a different installation: %v", err)
	}

	lm.Unlock("/wiki")
	if lm.IsLocked("/wiki") {
		t.Fatalf("expected /wiki to be unlocked")
	}
}

func TestLockReclaimsStale(t *testing.T) {
	dir := t.TempDir()
	lm, err := NewLockManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	// pid far above pid_max on linux, so it cannot be alive
	stale := lm.lockFile("/wiki")
	if err := os.WriteFile(stale, []byte(fmt.Sprintf("%d\n", 1<<30)), 0644); err != nil {
		t.Fatal(err)
	}

	if err := lm.TryLock("/wiki", 0); err != nil {
		t.Fatalf("expected stale lock to be reclaimed: %v", err)
	}
	if filepath.Dir(stale) != dir {
		t.Fatalf("lock file outside lock dir: %s", stale)
	}
}
