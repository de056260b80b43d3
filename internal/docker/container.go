package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

type ExecRequest struct {
	Cmd    []string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Client) GetContainerStatus(ctx context.Context, containerID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ContainerOpTimeout)
	defer cancel()

	inspect, err := c.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "not found", nil
		}
		return "", fmt.Errorf("failed to inspect container: %w", err)
	}

	return inspect.State.Status, nil
}

// Exec runs req.Cmd inside the container and returns its exit code. Stdout
// and stderr are demultiplexed into the request's writers.
func (c *Client) Exec(ctx context.Context, containerID string, req ExecRequest) (int, error) {
	execConfig := container.ExecOptions{
		Cmd:          req.Cmd,
		Env:          req.Env,
		AttachStdin:  req.Stdin != nil,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := c.cli.ContainerExecCreate(ctx, containerID, execConfig)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return 0, fmt.Errorf("container %s not found", containerID)
		}
		return 0, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := c.cli.ContainerExecAttach(ctx, execID.ID, container.ExecAttachOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	stdinErr := make(chan error, 1)
	if req.Stdin != nil {
		go func() {
			_, err := io.Copy(attachResp.Conn, req.Stdin)
			attachResp.CloseWrite()
			stdinErr <- err
		}()
	} else {
		stdinErr <- nil
	}

	stdout, stderr := req.Stdout, req.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if _, err := stdcopy.StdCopy(stdout, stderr, attachResp.Reader); err != nil {
		return 0, fmt.Errorf("failed to read exec output: %w", err)
	}
	if err := <-stdinErr; err != nil {
		return 0, fmt.Errorf("failed to write exec input: %w", err)
	}

	inspect, err := c.cli.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect exec: %w", err)
	}

	return inspect.ExitCode, nil
}
