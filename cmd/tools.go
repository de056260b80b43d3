package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aelpxy/wikibak/internal/archive"
	"github.com/aelpxy/wikibak/internal/constants"
	"github.com/aelpxy/wikibak/internal/docker"
	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/internal/maintenance"
	"github.com/aelpxy/wikibak/internal/runner"
)

// newLocalRunner is swapped out by tests.
var newLocalRunner = func() runner.Runner {
	return runner.NewLocal()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newArchiver(r runner.Runner) *archive.Archiver {
	return archive.NewArchiver(r, cfg.Tools.Tar, logging.With("archive"))
}

// dbRunner returns the runner for the database client tools: the local one,
// or an exec session in container when it is set.
func dbRunner(ctx context.Context, local runner.Runner, container string) (runner.Runner, func(), error) {
	if container == "" {
		container = cfg.Docker.DBContainer
	}
	if container == "" {
		return local, func() {}, nil
	}

	dockerClient, err := docker.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize docker client: %w", err)
	}

	status, err := dockerClient.GetContainerStatus(ctx, container)
	if err != nil {
		dockerClient.Close()
		return nil, nil, err
	}
	if status != "running" {
		dockerClient.Close()
		return nil, nil, fmt.Errorf("database container %s is %s", container, status)
	}

	return runner.NewDocker(dockerClient, container), func() { dockerClient.Close() }, nil
}

// acquireLock serialises runs against one installation unless locking is
// disabled by flag or config.
func acquireLock(root string, noLock bool) (func(), error) {
	if noLock || !cfg.Maintenance.Lock {
		return func() {}, nil
	}

	lm, err := maintenance.DefaultLockManager()
	if err != nil {
		return nil, err
	}
	if err := lm.TryLock(root, constants.LockTimeout); err != nil {
		return nil, err
	}
	return func() { lm.Unlock(root) }, nil
}
