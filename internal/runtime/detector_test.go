package runtime

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aelpxy/wikibak/internal/runner"
)

func statOnly(paths ...string) func(string) (os.FileInfo, error) {
	return func(p string) (os.FileInfo, error) {
		for _, ok := range paths {
			if p == ok {
				return nil, nil
			}
		}
		return nil, os.ErrNotExist
	}
}

func versionHandler(v string) runner.HandlerFunc {
	return func(_ context.Context, c runner.Command) error {
		_, err := io.WriteString(c.Stdout, v+"\n")
		return err
	}
}

func TestDetectDocker(t *testing.T) {
	t.Setenv("DOCKER_HOST", "")
	fake := runner.NewFake()
	fake.Handle("docker", versionHandler("27.3.1"))

	d := NewDetector(fake)
	d.stat = statOnly("/var/run/docker.sock")

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Type != RuntimeDocker || info.Version != "27.3.1" || !info.ServiceActive {
		t.Fatalf("info = %+v", info)
	}
	if got := strings.Join(fake.CallsTo("docker")[0].Args, " "); got != "version --format {{.Server.Version}}" {
		t.Fatalf("args = %q", got)
	}
}

func TestDetectRootlessPodmanFallsBackToClientVersion(t *testing.T) {
	t.Setenv("DOCKER_HOST", "")
	fake := runner.NewFake()
	fake.Missing["docker"] = true
	fake.Handle("podman", func(_ context.Context, c runner.Command) error {
		if strings.Contains(c.Args[2], "Server") {
			return &runner.ExitError{Tool: "podman", Code: 125}
		}
		_, err := io.WriteString(c.Stdout, "5.2.0")
		return err
	})

	d := NewDetector(fake)
	d.uid = 1000
	d.stat = statOnly()

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.GetRuntimeName() != "podman (rootless)" || info.Version != "5.2.0" {
		t.Fatalf("info = %+v", info)
	}
	if info.ServiceActive || info.SocketPath != "/run/user/1000/podman/podman.sock" {
		t.Fatalf("info = %+v", info)
	}
}

func TestDetectNothing(t *testing.T) {
	t.Setenv("DOCKER_HOST", "")
	fake := runner.NewFake()
	fake.Missing["docker"] = true
	fake.Missing["podman"] = true

	if _, err := NewDetector(fake).Detect(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDetectHonoursDockerHost(t *testing.T) {
	t.Setenv("DOCKER_HOST", "unix:///run/podman/podman.sock")
	fake := runner.NewFake()
	fake.Handle("podman", versionHandler("5.2.0"))
	fake.Handle("docker", func(context.Context, runner.Command) error {
		return errors.New("docker must not be probed")
	})

	d := NewDetector(fake)
	d.uid = 0
	d.stat = statOnly("/run/podman/podman.sock")

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Type != RuntimePodman || info.IsRootless || !info.ServiceActive {
		t.Fatalf("info = %+v", info)
	}
	if info.GetSocketURI() != "unix:///run/podman/podman.sock" {
		t.Fatalf("uri = %q", info.GetSocketURI())
	}
}
