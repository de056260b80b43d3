package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aelpxy/wikibak/pkg/models"
)

const sample = `<?php
# This file was automatically generated by the MediaWiki installer.
$wgSitename = "Test Wiki";

## Database settings
$wgDBtype = "mysql";
$wgDBserver = "db.internal";
$wgDBname = "wikidb";
$wgDBuser = "wikiuser";
$wgDBpassword = "s3cr\"et";

# MySQL table options to use during installation or update
$wgDBTableOptions = "ENGINE=InnoDB, DEFAULT CHARSET=binary";
$wgDBname = "ignored-second-match";
?>
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, models.SettingsFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRead(t *testing.T) {
	root := writeSettings(t, sample)

	s, err := Read(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Host != "db.internal" {
		t.Errorf("host = %q", s.Host)
	}
	if s.Name != "wikidb" {
		t.Errorf("name = %q (first match must win)", s.Name)
	}
	if s.User != "wikiuser" {
		t.Errorf("user = %q", s.User)
	}
	// value ends at the first closing quote, escapes are not interpreted
	if s.Password != `s3cr\` {
		t.Errorf("password = %q", s.Password)
	}
	if s.Charset != "binary" {
		t.Errorf("charset = %q", s.Charset)
	}

	p := s.Profile()
	if p.Name != "wikidb" || p.Charset != "binary" {
		t.Errorf("profile = %+v", p)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(t.TempDir())
	if !errors.Is(err, models.ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestMissingFieldsAreEmpty(t *testing.T) {
	root := writeSettings(t, "<?php\n$wgDBuser = \"only-user\";\n")

	s, err := Read(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "" || s.Host != "" || s.Password != "" {
		t.Fatalf("expected empty fields, got %+v", s)
	}
	if s.User != "only-user" {
		t.Fatalf("user = %q", s.User)
	}
	if s.Charset != models.DefaultCharset {
		t.Fatalf("charset = %q, want fallback", s.Charset)
	}
}

func TestCharset(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"declared", `$wgDBTableOptions = "ENGINE=InnoDB, DEFAULT CHARSET=utf8mb4";`, "utf8mb4"},
		{"no directive", `$wgDBname = "w";`, models.DefaultCharset},
		{"directive without charset", `$wgDBTableOptions = "ENGINE=InnoDB";`, models.DefaultCharset},
		{"empty token", `$wgDBTableOptions = "CHARSET=";`, models.DefaultCharset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := writeSettings(t, "<?php\n"+tc.content+"\n")
			if got := Charset(root); got != tc.want {
				t.Fatalf("Charset = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCharsetMissingFile(t *testing.T) {
	if got := Charset(t.TempDir()); got != models.DefaultCharset {
		t.Fatalf("Charset = %q", got)
	}
}

func TestLookupRequiresAssignment(t *testing.T) {
	s := Parse([]byte("$wgDBnameSuffix = \"nope\";\n$wgDBname = \"yes\";\n"))
	if s.Name != "yes" {
		t.Fatalf("name = %q", s.Name)
	}
}
