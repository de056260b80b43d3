package restore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

const adminUser = "root"

func (m *Manager) restoreDatabase(ctx context.Context, manifest *models.Manifest, opts Options, report *Report, log zerolog.Logger) {
	p := report.Profile
	if p.Name == "" {
		report.problem(log, fmt.Errorf("%w: no database name in restored settings, skipping database restore", models.ErrUnknownDatabase))
		return
	}

	if opts.RecreateDatabase {
		if err := m.exec(ctx, p, opts.RootPassword, CreateDatabaseStatement(p.Name, p.Charset), nil); err != nil {
			report.warn(log, err, "failed to create database")
		} else {
			report.step(log, fmt.Sprintf("created database %s", p.Name))
		}
	}

	if opts.RecreateUser {
		m.recreateUser(ctx, p, opts, report, log)
	}

	if !manifest.Has(models.ArtifactDatabase) {
		report.problem(log, fmt.Errorf("%w: no database dump in %s", models.ErrArchiveMemberMissing, manifest.Archive))
		return
	}

	if err := m.importDump(ctx, p, opts.RootPassword, manifest.Path(models.ArtifactDatabase)); err != nil {
		report.warn(log, err, "database import failed")
		return
	}
	report.step(log, fmt.Sprintf("imported database %s", p.Name))
}

func (m *Manager) recreateUser(ctx context.Context, p models.ConnectionProfile, opts Options, report *Report, log zerolog.Logger) {
	if p.User == "" {
		report.warn(log, nil, "no database user in restored settings, skipping user creation")
		return
	}

	// grants on a database that does not exist would dangle
	if !opts.RecreateDatabase {
		exists, err := m.databaseExists(ctx, p, opts.RootPassword)
		if err != nil {
			report.warn(log, err, "failed to check database existence, skipping user creation")
			return
		}
		if !exists {
			report.warn(log, nil, fmt.Sprintf("database %s does not exist, skipping user creation (use --recreate-db)", p.Name))
			return
		}
	}

	for _, host := range m.grantHosts() {
		if err := m.exec(ctx, p, opts.RootPassword, GrantStatement(p.Name, p.User, host, p.Password), nil); err != nil {
			report.warn(log, err, fmt.Sprintf("failed to grant privileges to %s@%s", p.User, host))
			continue
		}
		report.step(log, fmt.Sprintf("granted privileges to %s@%s", p.User, host))
	}
}

// grantHosts lists the account hosts a restored user is granted from: this
// machine, the loopback name and any host.
func (m *Manager) grantHosts() []string {
	hosts := []string{}
	if h, err := m.hostname(); err == nil && h != "" && h != "localhost" {
		hosts = append(hosts, h)
	}
	return append(hosts, "localhost", "%")
}

func (m *Manager) databaseExists(ctx context.Context, p models.ConnectionProfile, rootPassword string) (bool, error) {
	var out bytes.Buffer
	stmt := "SHOW DATABASES LIKE " + quoteString(escapeLike(p.Name))
	if err := m.exec(ctx, p, rootPassword, stmt, &out); err != nil {
		return false, err
	}
	return strings.TrimSpace(out.String()) != "", nil
}

func (m *Manager) exec(ctx context.Context, p models.ConnectionProfile, rootPassword, stmt string, stdout *bytes.Buffer) error {
	cmd := runner.Command{
		Name: m.tools.MySQL,
		Args: []string{"--host", p.HostOrDefault(), "--user", adminUser, "--batch", "--skip-column-names", "-e", stmt},
		Env:  passwordEnv(rootPassword),
	}
	if stdout != nil {
		cmd.Stdout = stdout
	}
	return m.tools.DB.Run(ctx, cmd)
}

func (m *Manager) importDump(ctx context.Context, p models.ConnectionProfile, rootPassword, dumpPath string) error {
	f, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("failed to open database dump: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read database dump: %w", err)
	}
	defer gz.Close()

	return m.tools.DB.Run(ctx, runner.Command{
		Name: m.tools.MySQL,
		Args: []string{
			"--host", p.HostOrDefault(),
			"--user", adminUser,
			"--default-character-set=" + p.CharsetOrDefault(),
			p.Name,
		},
		Env:   passwordEnv(rootPassword),
		Stdin: gz,
	})
}

func passwordEnv(password string) []string {
	if password == "" {
		return nil
	}
	return []string{"MYSQL_PWD=" + password}
}
