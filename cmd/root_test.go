package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aelpxy/wikibak/internal/backup"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs the root command with fresh flag values and an isolated home
// directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WIKIBAK_CONFIG", filepath.Join(home, ".wikibak", "config.toml"))
	return executeInHome(t, args...)
}

func executeInHome(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"Usage:", "wikibak", "backup", "restore", "inspect", "maintenance", "history", "doctor", "config"} {
		if !strings.Contains(out, name) {
			t.Fatalf("help output missing %q; got: %s", name, out)
		}
	}
}

func TestBackupRequiresDestAndWiki(t *testing.T) {
	_, err := execute(t, "backup")
	if err == nil {
		t.Fatalf("expected error for missing flags")
	}
	if !strings.Contains(err.Error(), `"dest"`) || !strings.Contains(err.Error(), `"wiki"`) {
		t.Fatalf("error does not name the missing flags: %v", err)
	}
	var re *runError
	if errors.As(err, &re) {
		t.Fatalf("missing flags must be reported as a usage error")
	}
	if exitCode(err) != exitFailure {
		t.Fatalf("exit code = %d", exitCode(err))
	}
}

func TestRestoreRequiresFlags(t *testing.T) {
	_, err := execute(t, "restore", "--archive", "x.tar.gz")
	if err == nil || !strings.Contains(err.Error(), "root-password") {
		t.Fatalf("expected missing root-password, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{failed(fmt.Errorf("%w: %w", backup.ErrDatabaseDump, errors.New("exit status 2"))), exitDatabaseDump},
		{failed(errors.New("boom")), exitFailure},
		{errors.New(`required flag(s) "dest" not set`), exitFailure},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestConfigPathHonoursEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "custom.toml")
	t.Setenv("WIKIBAK_CONFIG", path)

	out, err := executeInHome(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Fatalf("path = %q", out)
	}

	if _, err := executeInHome(t, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := executeInHome(t, "config", "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	if _, err := executeInHome(t, "config", "init", "--force"); err != nil {
		t.Fatal(err)
	}

	out, err = executeInHome(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "mysqldump") || !strings.Contains(out, "Dumping Database") {
		t.Fatalf("show output = %s", out)
	}
}
