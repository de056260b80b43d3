// Package restore re-creates an installation from a backup archive. Files
// are restored before the settings are read from the restored tree.
package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aelpxy/wikibak/internal/archive"
	"github.com/aelpxy/wikibak/internal/maintenance"
	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/internal/settings"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

type Tools struct {
	// DB executes mysql; it may point into a database container.
	DB       runner.Runner
	MySQL    string
	Archiver *archive.Archiver
}

type Options struct {
	Archive            string
	Installation       string
	RootPassword       string
	RecreateDatabase   bool
	RecreateUser       bool
	StagingRoot        string
	SkipDatabase       bool
	SkipFiles          bool
	MaintenanceMessage string
}

// Report describes what a restore did. Problems holds conditions that made
// the restore incomplete without aborting it.
type Report struct {
	Manifest models.Manifest
	Profile  models.ConnectionProfile
	Steps    []string
	Warnings []string
	Problems []error
}

func (r *Report) step(log zerolog.Logger, msg string) {
	log.Info().Msg(msg)
	r.Steps = append(r.Steps, msg)
}

func (r *Report) warn(log zerolog.Logger, err error, msg string) {
	log.Warn().Err(err).Msg(msg)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	r.Warnings = append(r.Warnings, msg)
}

func (r *Report) problem(log zerolog.Logger, err error) {
	log.Warn().Err(err).Msg("restore incomplete")
	r.Problems = append(r.Problems, err)
}

// Has reports whether a problem matching target was recorded.
func (r *Report) Has(target error) bool {
	for _, p := range r.Problems {
		if errors.Is(p, target) {
			return true
		}
	}
	return false
}

type Manager struct {
	tools    Tools
	log      zerolog.Logger
	hostname func() (string, error)
}

func NewManager(tools Tools, log zerolog.Logger) *Manager {
	if tools.MySQL == "" {
		tools.MySQL = "mysql"
	}
	return &Manager{tools: tools, log: log, hostname: os.Hostname}
}

func (m *Manager) Run(ctx context.Context, opts Options) (report *Report, err error) {
	if opts.Installation == "" {
		return nil, fmt.Errorf("installation directory is required")
	}
	root, err := filepath.Abs(opts.Installation)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve installation directory: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create installation directory: %w", err)
	}

	log := m.log.With().Str("wiki", root).Str("archive", opts.Archive).Logger()

	manifest, err := m.tools.Archiver.Inspect(ctx, opts.Archive, opts.StagingRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := manifest.Release(); relErr != nil {
			log.Error().Err(relErr).Msg("failed to remove staging directory")
		}
	}()

	report = &Report{Manifest: *manifest}
	report.step(log, fmt.Sprintf("expanded archive into %s", manifest.Staging))

	if !opts.SkipFiles {
		m.restoreFiles(ctx, manifest, root, report, log)
	}

	report.Profile = m.profile(root, manifest, report, log)

	if !opts.SkipDatabase {
		m.restoreDatabase(ctx, manifest, opts, report, log)
	}

	if _, statErr := os.Stat(models.NewInstallation(root).SettingsPath()); statErr == nil {
		ctl := maintenance.NewController(root, opts.MaintenanceMessage, log)
		if err := ctl.SetOff(); err != nil {
			return report, err
		}
		report.step(log, "maintenance mode off")
	}

	return report, nil
}

func (m *Manager) restoreFiles(ctx context.Context, manifest *models.Manifest, root string, report *Report, log zerolog.Logger) {
	switch {
	case manifest.Has(models.ArtifactFilesystem):
		if err := m.tools.Archiver.Extract(ctx, manifest.Path(models.ArtifactFilesystem), root, true); err != nil {
			report.warn(log, err, "filesystem restore failed")
			return
		}
		report.step(log, "restored installation filesystem")
	case manifest.Has(models.ArtifactImages):
		if err := m.tools.Archiver.Extract(ctx, manifest.Path(models.ArtifactImages), root, false); err != nil {
			report.warn(log, err, "images restore failed")
			return
		}
		report.step(log, "restored images")
	default:
		report.step(log, "archive has no file artifacts, keeping installation files as they are")
	}
}

// profile reads the settings of the restored installation. The charset the
// dump was written with wins over the one declared in the settings.
func (m *Manager) profile(root string, manifest *models.Manifest, report *Report, log zerolog.Logger) models.ConnectionProfile {
	var p models.ConnectionProfile
	s, err := settings.Read(root)
	if err != nil {
		report.warn(log, err, "settings unavailable, continuing without connection parameters")
	} else {
		p = s.Profile()
	}
	if manifest.Charset != "" {
		p.Charset = manifest.Charset
	}
	return p
}
