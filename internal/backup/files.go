package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aelpxy/wikibak/internal/archive"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

func (m *Manager) archiveImages(ctx context.Context, root, dest, prefix string, dereference bool, result *Result, log zerolog.Logger) (models.Artifact, bool) {
	images := models.NewInstallation(root).ImagesPath()
	info, err := os.Lstat(images)
	if err != nil {
		result.warn(log, err, "images directory not found, skipping")
		return models.Artifact{}, false
	}
	if info.Mode()&os.ModeSymlink != 0 && !dereference {
		result.warn(log, nil, fmt.Sprintf("%s is a symbolic link; only the link is archived, use --dereference to include its target", images))
	}

	out := filepath.Join(dest, archive.FileName(models.ArtifactImages, prefix, ""))
	log.Info().Msg("archiving images")
	err = m.tools.Archiver.Create(ctx, out,
		[]archive.Entry{{Dir: root, Name: filepath.Base(images)}},
		archive.CreateOptions{Dereference: dereference})
	if err != nil {
		result.warn(log, err, "images archive failed")
		return models.Artifact{}, false
	}
	return models.Artifact{Kind: models.ArtifactImages, Path: out}, true
}

func (m *Manager) archiveFilesystem(ctx context.Context, root, dest, prefix string, result *Result, log zerolog.Logger) (models.Artifact, bool) {
	if dest == root || strings.HasPrefix(dest, root+string(filepath.Separator)) {
		result.warn(log, nil, "destination is inside the installation; earlier artifacts will be part of the filesystem archive")
	}

	out := filepath.Join(dest, archive.FileName(models.ArtifactFilesystem, prefix, ""))
	log.Info().Msg("archiving installation")
	err := m.tools.Archiver.Create(ctx, out,
		[]archive.Entry{{Dir: root, Name: "."}},
		archive.CreateOptions{Preserve: true})
	if err != nil {
		result.warn(log, err, "filesystem archive failed")
		return models.Artifact{}, false
	}
	return models.Artifact{Kind: models.ArtifactFilesystem, Path: out}, true
}
