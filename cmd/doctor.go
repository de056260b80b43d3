package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aelpxy/wikibak/internal/backup"
	"github.com/aelpxy/wikibak/internal/docker"
	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/internal/maintenance"
	"github.com/aelpxy/wikibak/internal/runner"
	"github.com/aelpxy/wikibak/internal/runtime"
	"github.com/aelpxy/wikibak/internal/settings"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/spf13/cobra"
)

var (
	doctorWiki        string
	doctorDBContainer string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system health and dependencies",
	Long:  "Verify that the external tools are installed and, optionally, that a wiki installation can be backed up",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintln(out, titleStyle.Render("==> checking system health"))
	fmt.Fprintln(out)

	local := newLocalRunner()
	allGood := true

	allGood = checkTools(out, local) && allGood

	container := doctorDBContainer
	if container == "" {
		container = cfg.Docker.DBContainer
	}
	if container != "" {
		allGood = checkContainer(ctx, out, local, container) && allGood
	}

	allGood = checkDirectories(out) && allGood

	if doctorWiki != "" {
		allGood = checkInstallation(out, doctorWiki) && allGood
	}

	fmt.Fprintln(out)
	if !allGood {
		fmt.Fprintln(out, errorStyle.Render("  [error] some checks failed"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("  fix the issues above before running a backup"))
		return failed(errors.New("some checks failed"))
	}

	fmt.Fprintln(out, successStyle.Render("  [done] all checks passed"))
	return nil
}

func checkTools(out io.Writer, r runner.Runner) bool {
	fmt.Fprintln(out, labelStyle.Render("  tools"))

	allGood := true
	for _, tool := range []struct {
		name     string
		optional bool
	}{
		{cfg.Tools.MySQLDump, cfg.Docker.DBContainer != "" || doctorDBContainer != ""},
		{cfg.Tools.MySQL, cfg.Docker.DBContainer != "" || doctorDBContainer != ""},
		{cfg.Tools.Tar, false},
		{cfg.Tools.PHP, true},
	} {
		path, err := r.LookPath(tool.name)
		switch {
		case err == nil:
			fmt.Fprintf(out, "    %s %s %s\n", successStyle.Render("[✓]"), valueStyle.Render(tool.name), dimStyle.Render(path))
		case tool.optional:
			fmt.Fprintf(out, "    %s %s not found\n", warnStyle.Render("[!]"), valueStyle.Render(tool.name))
		default:
			fmt.Fprintf(out, "    %s %s not found\n", errorStyle.Render("[✗]"), valueStyle.Render(tool.name))
			allGood = false
		}
	}
	if _, err := r.LookPath(cfg.Tools.PHP); err != nil {
		fmt.Fprintf(out, "      %s\n", dimStyle.Render("without php the XML page dump is skipped"))
	}

	fmt.Fprintln(out)
	return allGood
}

func checkContainer(ctx context.Context, out io.Writer, local runner.Runner, container string) bool {
	fmt.Fprintln(out, labelStyle.Render("  database container"))

	info, err := runtime.NewDetector(local).Detect(ctx)
	if err != nil {
		fmt.Fprintf(out, "    %s runtime not detected\n", errorStyle.Render("[✗]"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(err.Error()))
		fmt.Fprintln(out)
		return false
	}
	fmt.Fprintf(out, "    %s %s detected\n", successStyle.Render("[✓]"), valueStyle.Render(info.GetRuntimeName()))
	fmt.Fprintf(out, "      %s %s\n", dimStyle.Render("version:"), dimStyle.Render(info.Version))
	fmt.Fprintf(out, "      %s %s\n", dimStyle.Render("socket:"), dimStyle.Render(info.SocketPath))

	dockerClient, err := docker.NewClient()
	if err != nil {
		fmt.Fprintf(out, "    %s runtime daemon not responding\n", errorStyle.Render("[✗]"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(err.Error()))
		fmt.Fprintln(out)
		return false
	}
	defer dockerClient.Close()

	apiVersion, err := dockerClient.Ping(ctx)
	if err != nil {
		fmt.Fprintf(out, "    %s runtime daemon not responding\n", errorStyle.Render("[✗]"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(err.Error()))
		fmt.Fprintln(out)
		return false
	}
	fmt.Fprintf(out, "    %s daemon running %s\n", successStyle.Render("[✓]"), dimStyle.Render("(api "+apiVersion+")"))

	status, err := dockerClient.GetContainerStatus(ctx, container)
	if err != nil || status != "running" {
		if err != nil {
			status = err.Error()
		}
		fmt.Fprintf(out, "    %s container %s %s\n", errorStyle.Render("[✗]"), valueStyle.Render(container), dimStyle.Render(status))
		fmt.Fprintln(out)
		return false
	}
	fmt.Fprintf(out, "    %s container %s running\n", successStyle.Render("[✓]"), valueStyle.Render(container))

	allGood := true
	inContainer := runner.NewDocker(dockerClient, container)
	for _, tool := range []string{cfg.Tools.MySQLDump, cfg.Tools.MySQL} {
		if _, err := inContainer.LookPath(tool); err != nil {
			fmt.Fprintf(out, "    %s %s not found in container\n", errorStyle.Render("[✗]"), valueStyle.Render(tool))
			allGood = false
			continue
		}
		fmt.Fprintf(out, "    %s %s available in container\n", successStyle.Render("[✓]"), valueStyle.Render(tool))
	}

	fmt.Fprintln(out)
	return allGood
}

func checkDirectories(out io.Writer) bool {
	fmt.Fprintln(out, labelStyle.Render("  wikibak directories"))

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(out, "    %s cannot determine home directory\n", errorStyle.Render("[✗]"))
		return false
	}
	dir := filepath.Join(homeDir, ".wikibak")

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Fprintf(out, "    %s ~/.wikibak missing\n", warnStyle.Render("[!]"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render("will be created by the first backup"))
	} else {
		fmt.Fprintf(out, "    %s %s exists\n", successStyle.Render("[✓]"), dimStyle.Render("~/.wikibak"))
	}

	if configManager != nil {
		if _, err := os.Stat(configManager.Path()); os.IsNotExist(err) {
			fmt.Fprintf(out, "    %s %s missing, using defaults\n", warnStyle.Render("[!]"), dimStyle.Render("config.toml"))
		} else {
			fmt.Fprintf(out, "    %s %s loaded\n", successStyle.Render("[✓]"), dimStyle.Render(configManager.Path()))
		}
	}

	registry, err := backup.NewRegistry()
	if err == nil {
		err = registry.Initialize()
	}
	if err != nil {
		fmt.Fprintf(out, "    %s %s unreadable\n", errorStyle.Render("[✗]"), dimStyle.Render("history.json"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(err.Error()))
		fmt.Fprintln(out)
		return false
	}
	fmt.Fprintf(out, "    %s %s (%d runs)\n", successStyle.Render("[✓]"), dimStyle.Render("history.json"), len(registry.Records))

	fmt.Fprintln(out)
	return true
}

func checkInstallation(out io.Writer, wiki string) bool {
	fmt.Fprintln(out, labelStyle.Render("  installation"))

	s, err := settings.Read(wiki)
	if err != nil {
		fmt.Fprintf(out, "    %s settings unreadable\n", errorStyle.Render("[✗]"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render(err.Error()))
		fmt.Fprintln(out)
		return false
	}
	fmt.Fprintf(out, "    %s %s\n", successStyle.Render("[✓]"), dimStyle.Render(s.Path))

	allGood := true
	if s.Name == "" {
		fmt.Fprintf(out, "    %s no database name configured\n", errorStyle.Render("[✗]"))
		allGood = false
	} else {
		p := s.Profile()
		fmt.Fprintf(out, "    %s database %s on %s %s\n", successStyle.Render("[✓]"),
			valueStyle.Render(p.Name), valueStyle.Render(p.HostOrDefault()), dimStyle.Render("("+p.CharsetOrDefault()+")"))
		if p.User != "" {
			fmt.Fprintf(out, "      %s %s %s\n", dimStyle.Render("user:"), dimStyle.Render(p.User),
				dimStyle.Render("(password "+utils.MaskSensitive(p.Password, 2)+")"))
		}
	}

	ctl := maintenance.NewController(wiki, cfg.Maintenance.Message, logging.With("maintenance"))
	if state, err := ctl.Status(); err == nil && state == maintenance.On {
		fmt.Fprintf(out, "    %s wiki is in maintenance mode\n", warnStyle.Render("[!]"))
		fmt.Fprintf(out, "      %s\n", dimStyle.Render("run: wikibak maintenance off --wiki "+wiki))
	}

	if lm, err := maintenance.DefaultLockManager(); err == nil && lm.IsLocked(wiki) {
		fmt.Fprintf(out, "    %s a backup or restore is running\n", warnStyle.Render("[!]"))
	}

	fmt.Fprintln(out)
	return allGood
}

func init() {
	doctorCmd.Flags().StringVar(&doctorWiki, "wiki", "", "also check this wiki installation")
	doctorCmd.Flags().StringVar(&doctorDBContainer, "db-container", "", "also check this database container")
	rootCmd.AddCommand(doctorCmd)
}
