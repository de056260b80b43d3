package backup

import (
	"context"
	"fmt"
	"io"

	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/pkg/models"
)

// DumpArgs builds the mysqldump argument list for a profile.
func DumpArgs(p models.ConnectionProfile) []string {
	args := []string{
		"--host", p.HostOrDefault(),
		"--default-character-set=" + p.CharsetOrDefault(),
		"--single-transaction",
		"--quick",
	}
	if p.User != "" {
		args = append(args, "--user", p.User)
	}
	return append(args, p.Name)
}

// PasswordEnv passes the password to mysql tools without exposing it on the
// command line.
func PasswordEnv(password string) []string {
	if password == "" {
		return nil
	}
	return []string{"MYSQL_PWD=" + password}
}

func (m *Manager) dumpDatabase(ctx context.Context, p models.ConnectionProfile, path string) (models.Artifact, error) {
	if p.Name == "" {
		return models.Artifact{}, fmt.Errorf("%w: %w: no database name in settings", ErrDatabaseDump, models.ErrUnknownDatabase)
	}

	m.log.Info().Str("database", p.Name).Str("charset", p.CharsetOrDefault()).Msg("dumping database")
	err := writeCompressed(path, func(w io.Writer) error {
		return m.tools.DB.Run(ctx, runner.Command{
			Name:   m.tools.MySQLDump,
			Args:   DumpArgs(p),
			Env:    PasswordEnv(p.Password),
			Stdout: w,
		})
	})
	if err != nil {
		return models.Artifact{}, fmt.Errorf("%w: %w", ErrDatabaseDump, err)
	}

	return models.Artifact{Kind: models.ArtifactDatabase, Path: path, Charset: p.CharsetOrDefault()}, nil
}
