package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/aelpxy/wikibak/internal/docker"
)

// Docker runs tools inside an existing container, typically the database
// container of a dockerised wiki. Dir is ignored.
type Docker struct {
	client    *docker.Client
	container string
}

func NewDocker(client *docker.Client, container string) *Docker {
	return &Docker{client: client, container: container}
}

func (d *Docker) LookPath(name string) (string, error) {
	out := &tailBuffer{max: 1024}
	code, err := d.client.Exec(d.client.GetContext(), d.container, docker.ExecRequest{
		Cmd:    []string{"sh", "-c", "command -v " + name},
		Stdout: out,
		Stderr: io.Discard,
	})
	if err != nil {
		return "", err
	}
	if code != 0 || out.String() == "" {
		return "", fmt.Errorf("%w: %s in container %s", ErrNotFound, name, d.container)
	}
	return out.String(), nil
}

func (d *Docker) Run(ctx context.Context, c Command) error {
	stderr := &tailBuffer{max: 4096}
	var errOut io.Writer = stderr
	if c.Stderr != nil {
		errOut = io.MultiWriter(c.Stderr, stderr)
	}
	stdout := c.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	code, err := d.client.Exec(ctx, d.container, docker.ExecRequest{
		Cmd:    append([]string{c.Name}, c.Args...),
		Env:    c.Env,
		Stdin:  c.Stdin,
		Stdout: stdout,
		Stderr: errOut,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Tool: c.Name, Code: code, Stderr: stderr.String()}
	}
	return nil
}
