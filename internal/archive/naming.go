package archive

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/aelpxy/wikibak/pkg/models"
)

// Member name suffixes. These names are the only record of what a backup
// contains, so backup and restore must agree on them byte for byte.
const (
	DatabaseMarker   = "database"
	DatabaseSuffix   = ".sql.gz"
	PagesSuffix      = "-pages.xml.gz"
	ImagesSuffix     = "-images.tar.gz"
	FilesystemSuffix = "-filesystem.tar.gz"
	BundleSuffix     = "-mediawiki-backup.tar.gz"
)

// FileName returns the member name of an artifact of the given kind.
// charset only matters for database dumps.
func FileName(kind models.ArtifactKind, prefix, charset string) string {
	switch kind {
	case models.ArtifactDatabase:
		return prefix + "-" + DatabaseMarker + "_" + charset + DatabaseSuffix
	case models.ArtifactPages:
		return prefix + PagesSuffix
	case models.ArtifactImages:
		return prefix + ImagesSuffix
	case models.ArtifactFilesystem:
		return prefix + FilesystemSuffix
	case models.ArtifactBundle:
		return prefix + BundleSuffix
	}
	return ""
}

// KindOf classifies a member by its base name.
func KindOf(name string) (models.ArtifactKind, bool) {
	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, FilesystemSuffix):
		return models.ArtifactFilesystem, true
	case strings.HasSuffix(base, ImagesSuffix):
		return models.ArtifactImages, true
	case strings.HasSuffix(base, PagesSuffix):
		return models.ArtifactPages, true
	case strings.Contains(base, DatabaseMarker):
		return models.ArtifactDatabase, true
	}
	return "", false
}

// CharsetFromName recovers the charset token of a database member: the text
// after the last underscore, up to the next period.
func CharsetFromName(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return ""
	}
	rest := base[i+1:]
	if j := strings.IndexByte(rest, '.'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// PrefixFromName strips the kind-specific suffix from a member name.
func PrefixFromName(kind models.ArtifactKind, name string) string {
	base := filepath.Base(name)
	switch kind {
	case models.ArtifactDatabase:
		if i := strings.LastIndex(base, "-"+DatabaseMarker); i > 0 {
			return base[:i]
		}
		return ""
	case models.ArtifactPages:
		return strings.TrimSuffix(base, PagesSuffix)
	case models.ArtifactImages:
		return strings.TrimSuffix(base, ImagesSuffix)
	case models.ArtifactFilesystem:
		return strings.TrimSuffix(base, FilesystemSuffix)
	case models.ArtifactBundle:
		return strings.TrimSuffix(base, BundleSuffix)
	}
	return ""
}

// StagingName is the archive's base name with every extension removed.
func StagingName(archivePath string) string {
	base := filepath.Base(archivePath)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Classify fills m from a list of member paths. When several members share a
// kind the lexically first one wins.
func Classify(m *models.Manifest, paths []string) {
	sorted := append([]string(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	for _, p := range sorted {
		kind, ok := KindOf(p)
		if !ok || m.Has(kind) {
			continue
		}
		m.Members[kind] = p
	}

	if db, ok := m.Members[models.ArtifactDatabase]; ok {
		m.Charset = CharsetFromName(db)
	}

	for _, kind := range []models.ArtifactKind{models.ArtifactDatabase, models.ArtifactPages, models.ArtifactImages, models.ArtifactFilesystem} {
		if p, ok := m.Members[kind]; ok {
			if prefix := PrefixFromName(kind, p); prefix != "" {
				m.Prefix = prefix
				break
			}
		}
	}
}
