package maintenance

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

const settingsWithMarker = "<?php\n$wgDBname = \"wikidb\";\n?>\n"

func setup(t *testing.T, content string) (*Controller, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, models.SettingsFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return NewController(root, "", zerolog.Nop()), path
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSetOnInsertsBeforeClosingMarker(t *testing.T) {
	c, path := setup(t, settingsWithMarker)

	if err := c.SetOn(); err != nil {
		t.Fatalf("SetOn: %v", err)
	}

	want := "<?php\n$wgDBname = \"wikidb\";\n" + Sentinel(DefaultMessage) + "\n?>\n"
	if got := read(t, path); got != want {
		t.Fatalf("content mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestSetOnAppendsWithoutMarker(t *testing.T) {
	c, path := setup(t, "<?php\n$wgDBname = \"wikidb\";")

	if err := c.SetOn(); err != nil {
		t.Fatalf("SetOn: %v", err)
	}

	want := "<?php\n$wgDBname = \"wikidb\";\n" + Sentinel(DefaultMessage) + "\n"
	if got := read(t, path); got != want {
		t.Fatalf("content mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestSetOnIsIdempotent(t *testing.T) {
	c, path := setup(t, settingsWithMarker)

	if err := c.SetOn(); err != nil {
		t.Fatal(err)
	}
	first := read(t, path)
	if err := c.SetOn(); err != nil {
		t.Fatal(err)
	}
	second := read(t, path)

	if first != second {
		t.Fatalf("second SetOn changed the file\nfirst:  %q\nsecond: %q", first, second)
	}
	if n := strings.Count(second, Sentinel(DefaultMessage)); n != 1 {
		t.Fatalf("expected exactly one sentinel, found %d", n)
	}
}

func TestSetOffRestoresOriginal(t *testing.T) {
	c, path := setup(t, settingsWithMarker)

	if err := c.SetOn(); err != nil {
		t.Fatal(err)
	}
	if err := c.SetOff(); err != nil {
		t.Fatal(err)
	}
	if got := read(t, path); got != settingsWithMarker {
		t.Fatalf("content mismatch\n got: %q\nwant: %q", got, settingsWithMarker)
	}

	// already off
	if err := c.SetOff(); err != nil {
		t.Fatalf("SetOff on clean file: %v", err)
	}
	if got := read(t, path); got != settingsWithMarker {
		t.Fatalf("no-op SetOff changed the file: %q", got)
	}
}

func TestStatus(t *testing.T) {
	c, _ := setup(t, settingsWithMarker)

	st, err := c.Status()
	if err != nil || st != Off {
		t.Fatalf("Status = %v, %v", st, err)
	}
	if err := c.SetOn(); err != nil {
		t.Fatal(err)
	}
	st, err = c.Status()
	if err != nil || st != On {
		t.Fatalf("Status = %v, %v", st, err)
	}
}

func TestTransitionsAreLogged(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, models.SettingsFileName), []byte(settingsWithMarker), 0644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	c := NewController(root, "", zerolog.New(&buf))

	_ = c.SetOn()
	_ = c.SetOn()

	out := buf.String()
	if !strings.Contains(out, "maintenance mode on") || !strings.Contains(out, "already on") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestMissingSettings(t *testing.T) {
	c := NewController(t.TempDir(), "", zerolog.Nop())
	if err := c.SetOn(); !errors.Is(err, models.ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestReadOnlySettingsFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	c, path := setup(t, settingsWithMarker)
	if err := os.Chmod(path, 0444); err != nil {
		t.Fatal(err)
	}

	if err := c.SetOn(); !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got := read(t, path); got != settingsWithMarker {
		t.Fatalf("file changed despite permission error")
	}
}

func TestCustomMessageIsQuoted(t *testing.T) {
	if got := Sentinel("it's busy"); got != `$wgReadOnly = 'it\'s busy';` {
		t.Fatalf("Sentinel = %q", got)
	}
}
