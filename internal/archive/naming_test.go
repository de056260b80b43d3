package archive

import (
	"testing"

	"github.com/aelpxy/wikibak/pkg/models"
)

func TestFileName(t *testing.T) {
	cases := []struct {
		kind models.ArtifactKind
		want string
	}{
		{models.ArtifactDatabase, "2024-01-01-database_utf8.sql.gz"},
		{models.ArtifactPages, "2024-01-01-pages.xml.gz"},
		{models.ArtifactImages, "2024-01-01-images.tar.gz"},
		{models.ArtifactFilesystem, "2024-01-01-filesystem.tar.gz"},
		{models.ArtifactBundle, "2024-01-01-mediawiki-backup.tar.gz"},
	}
	for _, tc := range cases {
		if got := FileName(tc.kind, "2024-01-01", "utf8"); got != tc.want {
			t.Errorf("FileName(%s) = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestNamesRoundTrip(t *testing.T) {
	for _, charset := range []string{"utf8", "utf8mb4", "binary", "latin1"} {
		for _, kind := range []models.ArtifactKind{models.ArtifactDatabase, models.ArtifactPages, models.ArtifactImages, models.ArtifactFilesystem} {
			name := FileName(kind, "nightly-2024", charset)
			got, ok := KindOf(name)
			if !ok || got != kind {
				t.Fatalf("KindOf(%q) = %q, %v", name, got, ok)
			}
			if p := PrefixFromName(kind, name); p != "nightly-2024" {
				t.Fatalf("PrefixFromName(%q) = %q", name, p)
			}
			if kind == models.ArtifactDatabase {
				if cs := CharsetFromName(name); cs != charset {
					t.Fatalf("CharsetFromName(%q) = %q", name, cs)
				}
			}
		}
	}
}

func TestCharsetFromName(t *testing.T) {
	cases := map[string]string{
		"/tmp/x/2024-01-01-database_utf8.sql.gz": "utf8",
		"my_wiki-database_latin1.sql.gz":         "latin1",
		"database.sql.gz":                        "",
		"2024-01-01-database_utf8mb4":            "utf8mb4",
	}
	for in, want := range cases {
		if got := CharsetFromName(in); got != want {
			t.Errorf("CharsetFromName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStagingName(t *testing.T) {
	cases := map[string]string{
		"/bk/2024-01-01-mediawiki-backup.tar.gz": "2024-01-01-mediawiki-backup",
		"backup.tgz":                             "backup",
		"plain":                                  "plain",
	}
	for in, want := range cases {
		if got := StagingName(in); got != want {
			t.Errorf("StagingName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	m := models.NewManifest("a.tar.gz", "/stage")
	Classify(m, []string{
		"/stage/2024-01-01-pages.xml.gz",
		"/stage/2024-01-01-images.tar.gz",
		"/stage/zz-database_latin1.sql.gz",
		"/stage/2024-01-01-database_utf8.sql.gz",
		"/stage/README",
	})

	if got := m.Path(models.ArtifactDatabase); got != "/stage/2024-01-01-database_utf8.sql.gz" {
		t.Fatalf("database member = %q (want lexically first)", got)
	}
	if m.Charset != "utf8" {
		t.Fatalf("charset = %q", m.Charset)
	}
	if m.Prefix != "2024-01-01" {
		t.Fatalf("prefix = %q", m.Prefix)
	}
	if !m.Has(models.ArtifactImages) || !m.Has(models.ArtifactPages) {
		t.Fatalf("missing kinds: %v", m.Kinds())
	}
	if m.Has(models.ArtifactFilesystem) {
		t.Fatalf("unexpected filesystem member")
	}
}

func TestClassifyWithoutDatabase(t *testing.T) {
	m := models.NewManifest("a.tar.gz", "/stage")
	Classify(m, []string{"/stage/2024-01-01-filesystem.tar.gz"})

	if m.Has(models.ArtifactDatabase) || m.Charset != "" {
		t.Fatalf("unexpected database classification: %+v", m)
	}
	if m.Prefix != "2024-01-01" {
		t.Fatalf("prefix = %q", m.Prefix)
	}
}
