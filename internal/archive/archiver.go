// Package archive drives the external tar tool and implements the
// filename convention shared by backup and restore.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/rs/zerolog"
)

// Entry is one path added to an archive, relative to Dir.
type Entry struct {
	Dir  string
	Name string
}

type CreateOptions struct {
	Dereference bool
	Preserve    bool
}

type Archiver struct {
	runner runner.Runner
	tar    string
	log    zerolog.Logger
}

func NewArchiver(r runner.Runner, tarBin string, log zerolog.Logger) *Archiver {
	if tarBin == "" {
		tarBin = "tar"
	}
	return &Archiver{runner: r, tar: tarBin, log: log}
}

// Create writes a gzip-compressed tar at out. A failed run leaves no file
// behind.
func (a *Archiver) Create(ctx context.Context, out string, entries []Entry, opts CreateOptions) error {
	args := []string{"-c", "-z"}
	if opts.Dereference {
		args = append(args, "-h")
	}
	if opts.Preserve {
		args = append(args, "-p")
	}
	args = append(args, "-f", out)
	for _, e := range entries {
		args = append(args, "-C", e.Dir, e.Name)
	}

	a.log.Debug().Str("archive", out).Int("entries", len(entries)).Msg("creating archive")
	if err := a.runner.Run(ctx, runner.Command{Name: a.tar, Args: args}); err != nil {
		os.Remove(out)
		return fmt.Errorf("failed to create %s: %w", filepath.Base(out), err)
	}
	return nil
}

func (a *Archiver) Extract(ctx context.Context, archivePath, dest string, preserve bool) error {
	args := []string{"-x", "-z"}
	if preserve {
		args = append(args, "-p")
	}
	args = append(args, "-f", archivePath, "-C", dest)

	a.log.Debug().Str("archive", archivePath).Str("dest", dest).Msg("extracting archive")
	if err := a.runner.Run(ctx, runner.Command{Name: a.tar, Args: args}); err != nil {
		return fmt.Errorf("failed to extract %s: %w", filepath.Base(archivePath), err)
	}
	return nil
}

// Consolidate bundles artifacts into <dest>/<prefix>-mediawiki-backup.tar.gz
// with flattened member names and removes the originals. On failure the
// originals are kept and returned unchanged.
func (a *Archiver) Consolidate(ctx context.Context, dest, prefix string, artifacts []models.Artifact) ([]models.Artifact, error) {
	if len(artifacts) == 0 {
		return artifacts, nil
	}

	out := filepath.Join(dest, FileName(models.ArtifactBundle, prefix, ""))
	entries := make([]Entry, 0, len(artifacts))
	for _, art := range artifacts {
		entries = append(entries, Entry{Dir: filepath.Dir(art.Path), Name: filepath.Base(art.Path)})
	}

	if err := a.Create(ctx, out, entries, CreateOptions{}); err != nil {
		return artifacts, err
	}

	for _, art := range artifacts {
		if err := os.Remove(art.Path); err != nil && !os.IsNotExist(err) {
			a.log.Warn().Err(err).Str("file", art.Path).Msg("failed to remove consolidated artifact")
		}
	}

	a.log.Info().Str("archive", out).Int("members", len(artifacts)).Msg("artifacts consolidated")
	return []models.Artifact{{Kind: models.ArtifactBundle, Path: out}}, nil
}

// Inspect expands archivePath into a staging directory under stagingRoot
// and classifies its members. The caller must Release the manifest.
func (a *Archiver) Inspect(ctx context.Context, archivePath, stagingRoot string) (*models.Manifest, error) {
	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("failed to access archive: %w", err)
	}
	if stagingRoot == "" {
		stagingRoot = os.TempDir()
	}

	staging := filepath.Join(stagingRoot, StagingName(archivePath))
	if _, err := os.Stat(staging); err == nil {
		return nil, fmt.Errorf("staging directory %s already exists, remove it first", staging)
	}
	if err := os.MkdirAll(staging, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	m := models.NewManifest(archivePath, staging)
	if err := a.Extract(ctx, archivePath, staging, false); err != nil {
		m.Release()
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(staging, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to list staging directory: %w", err)
	}

	Classify(m, files)
	for _, kind := range m.Kinds() {
		a.log.Debug().Str("kind", string(kind)).Str("file", m.Path(kind)).Msg("archive member")
	}
	if !m.Has(models.ArtifactDatabase) {
		a.log.Warn().Str("archive", archivePath).Msg("archive has no database dump")
	}
	return m, nil
}
