package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMissingFileYieldsDefaults(t *testing.T) {
	cm, err := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := cm.GetConfig()
	if cfg.Tools.MySQLDump != "mysqldump" || cfg.Tools.Tar != "tar" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if !cfg.Maintenance.Lock {
		t.Fatalf("expected lock to default to true")
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[tools]\nphp = \"/usr/bin/php8.2\"\n\n[docker]\ndb_container = \"wiki-db\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := cm.GetConfig()
	if cfg.Tools.PHP != "/usr/bin/php8.2" {
		t.Fatalf("php = %q", cfg.Tools.PHP)
	}
	if cfg.Tools.MySQL != "mysql" {
		t.Fatalf("mysql default lost: %q", cfg.Tools.MySQL)
	}
	if cfg.Docker.DBContainer != "wiki-db" {
		t.Fatalf("db_container = %q", cfg.Docker.DBContainer)
	}
	if cfg.Maintenance.Message == "" {
		t.Fatalf("maintenance message default lost")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cm, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}
	cm.GetConfig().Restore.StagingRoot = "/var/tmp/wikibak"
	if err := cm.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := NewConfigManagerAt(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.GetConfig().Restore.StagingRoot; got != "/var/tmp/wikibak" {
		t.Fatalf("staging_root = %q", got)
	}
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tools\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfigManagerAt(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
