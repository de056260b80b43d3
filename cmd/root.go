package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/aelpxy/wikibak/internal/backup"
	"github.com/aelpxy/wikibak/internal/config"
	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

const (
	exitFailure      = 1
	exitDatabaseDump = 3
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)
)

var (
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool

	configManager *config.ConfigManager
	cfg           = models.DefaultGlobalConfig()
)

var rootCmd = &cobra.Command{
	Use:   "wikibak",
	Short: "back up and restore MediaWiki installations",
	Long: titleStyle.Render("wikibak") + "\n" + subtitleStyle.Render("MediaWiki backup and restore") + "\n\n" +
		"Dumps the database, the page content and the uploaded files of a MediaWiki\n" +
		"installation while it is in read-only mode, and restores them from the\n" +
		"resulting archives.",
	Version:           "0.1.0",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// runError marks a failure that happened after the arguments were accepted,
// so Execute does not print usage for it.
type runError struct {
	err error
}

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func failed(err error) error {
	return &runError{err: err}
}

func SetVersionInfo(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
	rootCmd.Version = fmt.Sprintf("%s (built: %s, commit: %s)", version, buildTime, gitCommit)
}

func Execute() {
	c, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("[error] %v", err)))
	var re *runError
	if !errors.As(err, &re) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, c.UsageString())
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if errors.Is(err, backup.ErrDatabaseDump) {
		return exitDatabaseDump
	}
	return exitFailure
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		configManager, err = config.NewConfigManagerAt(configPath)
	} else {
		configManager, err = config.NewConfigManager()
	}
	if err != nil {
		return failed(fmt.Errorf("failed to load config: %w", err))
	}
	cfg = configManager.GetConfig()

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}
	logging.Init(logging.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()})
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.wikibak/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
}
