// Package runtime finds the container runtime that hosts a dockerised
// database, for the doctor checks.
package runtime

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aelpxy/wikibak/internal/runner"
)

type RuntimeType string

const (
	RuntimeDocker RuntimeType = "docker"
	RuntimePodman RuntimeType = "podman"
)

type RuntimeInfo struct {
	Type          RuntimeType
	SocketPath    string
	Version       string
	IsRootless    bool
	ServiceActive bool
}

// Detector probes for docker first, then podman. DOCKER_HOST pointing at a
// podman socket reverses the order.
type Detector struct {
	runner runner.Runner
	uid    int
	stat   func(string) (os.FileInfo, error)
}

func NewDetector(r runner.Runner) *Detector {
	return &Detector{runner: r, uid: os.Getuid(), stat: os.Stat}
}

func (d *Detector) Detect(ctx context.Context) (*RuntimeInfo, error) {
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		if strings.Contains(dockerHost, "podman") {
			return d.detectPodman(ctx)
		}
		return d.detectDocker(ctx)
	}

	if info, err := d.detectDocker(ctx); err == nil {
		return info, nil
	}

	if info, err := d.detectPodman(ctx); err == nil {
		return info, nil
	}

	return nil, fmt.Errorf("no container runtime detected (tried docker, podman)")
}

func (d *Detector) detectDocker(ctx context.Context) (*RuntimeInfo, error) {
	if _, err := d.runner.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("docker command not found")
	}

	socketPath := "/var/run/docker.sock"
	if _, err := d.stat(socketPath); err != nil {
		return nil, fmt.Errorf("docker socket not found at %s", socketPath)
	}

	version, err := d.version(ctx, "docker", "{{.Server.Version}}")
	if err != nil {
		return nil, fmt.Errorf("failed to get docker version: %w", err)
	}

	return &RuntimeInfo{
		Type:          RuntimeDocker,
		SocketPath:    socketPath,
		Version:       version,
		ServiceActive: true,
	}, nil
}

func (d *Detector) detectPodman(ctx context.Context) (*RuntimeInfo, error) {
	if _, err := d.runner.LookPath("podman"); err != nil {
		return nil, fmt.Errorf("podman command not found")
	}

	isRootless := d.uid != 0
	socketPath := PodmanSocketPath(d.uid)

	serviceActive := false
	if _, err := d.stat(socketPath); err == nil {
		serviceActive = true
	}

	version, err := d.version(ctx, "podman", "{{.Server.Version}}")
	if err != nil {
		version, err = d.version(ctx, "podman", "{{.Client.Version}}")
		if err != nil {
			return nil, fmt.Errorf("failed to get podman version: %w", err)
		}
	}

	return &RuntimeInfo{
		Type:          RuntimePodman,
		SocketPath:    socketPath,
		Version:       version,
		IsRootless:    isRootless,
		ServiceActive: serviceActive,
	}, nil
}

func (d *Detector) version(ctx context.Context, tool, format string) (string, error) {
	var out bytes.Buffer
	err := d.runner.Run(ctx, runner.Command{
		Name:   tool,
		Args:   []string{"version", "--format", format},
		Stdout: &out,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func (r *RuntimeInfo) GetSocketURI() string {
	return fmt.Sprintf("unix://%s", r.SocketPath)
}

func (r *RuntimeInfo) GetRuntimeName() string {
	name := string(r.Type)
	if r.Type == RuntimePodman && r.IsRootless {
		name += " (rootless)"
	}
	return name
}

func PodmanSocketPath(uid int) string {
	if uid != 0 {
		return fmt.Sprintf("/run/user/%d/podman/podman.sock", uid)
	}
	return "/run/podman/podman.sock"
}
