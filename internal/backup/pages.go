package backup

import (
	"context"
	"io"

	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

const dumpScript = "maintenance/dumpBackup.php"

// dumpPages runs the wiki's own XML exporter. Failures are reported as
// warnings; the page dump is best effort.
func (m *Manager) dumpPages(ctx context.Context, root, path string, result *Result, log zerolog.Logger) (models.Artifact, bool) {
	if _, err := m.tools.Runner.LookPath(m.tools.PHP); err != nil {
		result.warn(log, err, "php interpreter not found, skipping page dump")
		return models.Artifact{}, false
	}

	log.Info().Msg("dumping pages")
	err := writeCompressed(path, func(w io.Writer) error {
		return m.tools.Runner.Run(ctx, runner.Command{
			Name:   m.tools.PHP,
			Args:   []string{dumpScript, "--full", "--quiet"},
			Dir:    root,
			Stdout: w,
		})
	})
	if err != nil {
		result.warn(log, err, "page dump failed")
		return models.Artifact{}, false
	}

	return models.Artifact{Kind: models.ArtifactPages, Path: path}, true
}
