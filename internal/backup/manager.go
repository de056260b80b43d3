package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aelpxy/wikibak/internal/archive"
	"github.com/aelpxy/wikibak/internal/maintenance"
	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/internal/settings"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

// ErrDatabaseDump marks a failed database export. The whole run is aborted
// and the CLI exits with a dedicated code.
var ErrDatabaseDump = errors.New("database dump failed")

type Tools struct {
	// Runner executes php and tar.
	Runner runner.Runner
	// DB executes mysqldump; it may point into a database container.
	DB        runner.Runner
	MySQLDump string
	PHP       string
	Archiver  *archive.Archiver
}

type Options struct {
	Installation       string
	Destination        string
	Prefix             string
	SingleArchive      bool
	Dereference        bool
	FullFilesystem     bool
	SkipDatabase       bool
	SkipPages          bool
	SkipFiles          bool
	MaintenanceMessage string
}

type Result struct {
	Prefix    string
	Profile   models.ConnectionProfile
	Artifacts []models.Artifact
	Warnings  []string
}

func (r *Result) warn(log zerolog.Logger, err error, msg string) {
	log.Warn().Err(err).Msg(msg)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	r.Warnings = append(r.Warnings, msg)
}

type Manager struct {
	tools Tools
	log   zerolog.Logger
	now   func() time.Time
}

func NewManager(tools Tools, log zerolog.Logger) *Manager {
	if tools.DB == nil {
		tools.DB = tools.Runner
	}
	if tools.MySQLDump == "" {
		tools.MySQLDump = "mysqldump"
	}
	if tools.PHP == "" {
		tools.PHP = "php"
	}
	return &Manager{tools: tools, log: log, now: time.Now}
}

func DefaultPrefix(now time.Time) string {
	return now.Format("2006-01-02")
}

// Run exports the installation into opts.Destination. The installation is
// kept in maintenance mode while the export jobs run.
func (m *Manager) Run(ctx context.Context, opts Options) (result *Result, err error) {
	root, err := utils.ValidateDirPath(opts.Installation)
	if err != nil {
		return nil, fmt.Errorf("invalid installation directory: %w", err)
	}
	dest, err := utils.ValidateDirPath(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("invalid destination directory: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix(m.now())
	}
	if !utils.IsValidPrefix(prefix) {
		return nil, fmt.Errorf("invalid prefix %q", prefix)
	}

	s, err := settings.Read(root)
	if err != nil {
		return nil, err
	}

	result = &Result{Prefix: prefix, Profile: s.Profile()}
	log := m.log.With().Str("wiki", root).Str("prefix", prefix).Logger()

	ctl := maintenance.NewController(root, opts.MaintenanceMessage, log)
	if err := ctl.SetOn(); err != nil {
		return nil, err
	}
	defer func() {
		if offErr := ctl.SetOff(); offErr != nil {
			log.Error().Err(offErr).Msg("failed to leave maintenance mode")
			if err == nil {
				err = offErr
			}
		}
	}()

	if !opts.SkipDatabase {
		art, err := m.dumpDatabase(ctx, result.Profile, filepath.Join(dest, archive.FileName(models.ArtifactDatabase, prefix, result.Profile.CharsetOrDefault())))
		if err != nil {
			return result, err
		}
		result.Artifacts = append(result.Artifacts, art)
	}

	if !opts.SkipPages {
		if art, ok := m.dumpPages(ctx, root, filepath.Join(dest, archive.FileName(models.ArtifactPages, prefix, "")), result, log); ok {
			result.Artifacts = append(result.Artifacts, art)
		}
	}

	if !opts.SkipFiles {
		var (
			art models.Artifact
			ok  bool
		)
		if opts.FullFilesystem {
			art, ok = m.archiveFilesystem(ctx, root, dest, prefix, result, log)
		} else {
			art, ok = m.archiveImages(ctx, root, dest, prefix, opts.Dereference, result, log)
		}
		if ok {
			result.Artifacts = append(result.Artifacts, art)
		}
	}

	if opts.SingleArchive {
		arts, err := m.tools.Archiver.Consolidate(ctx, dest, prefix, result.Artifacts)
		if err != nil {
			result.warn(log, err, "failed to consolidate artifacts, keeping separate files")
		}
		result.Artifacts = arts
	}

	return result, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Size returns the on-disk size of an artifact, or 0 if it is gone.
func Size(a models.Artifact) int64 {
	return fileSize(a.Path)
}
