package runner

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc emulates one tool for Fake.
type HandlerFunc func(ctx context.Context, cmd Command) error

// Fake records invocations and dispatches them to per-tool handlers. Tools
// without a handler succeed without output; tools listed in Missing fail
// LookPath.
type Fake struct {
	mu       sync.Mutex
	Handlers map[string]HandlerFunc
	Missing  map[string]bool
	Calls    []Command
}

func NewFake() *Fake {
	return &Fake{
		Handlers: map[string]HandlerFunc{},
		Missing:  map[string]bool{},
	}
}

func (f *Fake) Handle(tool string, h HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Handlers[tool] = h
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Missing[name] {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return "/usr/bin/" + name, nil
}

func (f *Fake) Run(ctx context.Context, cmd Command) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	h := f.Handlers[cmd.Name]
	missing := f.Missing[cmd.Name]
	f.mu.Unlock()

	if missing {
		return fmt.Errorf("%w: %s", ErrNotFound, cmd.Name)
	}
	if h == nil {
		return nil
	}
	return h(ctx, cmd)
}

// CallsTo returns the recorded invocations of tool, in order.
func (f *Fake) CallsTo(tool string) []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Command
	for _, c := range f.Calls {
		if c.Name == tool {
			out = append(out, c)
		}
	}
	return out
}
