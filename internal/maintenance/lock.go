package maintenance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// LockManager serialises backup and restore runs against the same
// installation using pid lock files.
type LockManager struct {
	lockDir string
}

func NewLockManager(lockDir string) (*LockManager, error) {
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	return &LockManager{lockDir: lockDir}, nil
}

func DefaultLockManager() (*LockManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return NewLockManager(filepath.Join(homeDir, ".wikibak", "locks"))
}

func (lm *LockManager) lockFile(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(lm.lockDir, hex.EncodeToString(sum[:8])+".lock")
}

func (lm *LockManager) TryLock(root string, timeout time.Duration) error {
	lockFile := lm.lockFile(root)

	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), root)
			f.Close()
			return nil
		}

		// reclaim locks left behind by dead processes
		if pid, ok := readPid(lockFile); ok && !alive(pid) {
			os.Remove(lockFile)
			continue
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("another backup or restore of %s is in progress (lock %s)", root, lockFile)
		}

		time.Sleep(100 * time.Millisecond)
	}
}

func (lm *LockManager) Unlock(root string) {
	os.Remove(lm.lockFile(root))
}

func (lm *LockManager) IsLocked(root string) bool {
	_, err := os.Stat(lm.lockFile(root))
	return err == nil
}

func readPid(lockFile string) (int, bool) {
	data, err := os.ReadFile(lockFile)
	if err != nil {
		return 0, false
	}
	var pid int
	if n, _ := fmt.Sscanf(strings.TrimSpace(string(data)), "%d", &pid); n != 1 || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func alive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
