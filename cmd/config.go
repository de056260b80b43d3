package cmd

import (
	"fmt"
	"os"

	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "manage wikibak configuration",
	Long:  "manage global wikibak configuration settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "display current configuration",
	Long:  "show the effective configuration, file values merged over the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("==> wikibak configuration"))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  "+labelStyle.Render("tools:"))
		fmt.Fprintln(out, "    mysqldump: "+infoStyle.Render(cfg.Tools.MySQLDump))
		fmt.Fprintln(out, "    mysql: "+infoStyle.Render(cfg.Tools.MySQL))
		fmt.Fprintln(out, "    php: "+infoStyle.Render(cfg.Tools.PHP))
		fmt.Fprintln(out, "    tar: "+infoStyle.Render(cfg.Tools.Tar))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  "+labelStyle.Render("maintenance:"))
		fmt.Fprintln(out, "    message: "+infoStyle.Render(cfg.Maintenance.Message))
		if cfg.Maintenance.Lock {
			fmt.Fprintln(out, "    lock: "+successStyle.Render("true"))
		} else {
			fmt.Fprintln(out, "    lock: "+dimStyle.Render("false"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  "+labelStyle.Render("restore:"))
		fmt.Fprintln(out, "    staging root: "+infoStyle.Render(orDefault(cfg.Restore.StagingRoot, os.TempDir())))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  "+labelStyle.Render("docker:"))
		fmt.Fprintln(out, "    db container: "+infoStyle.Render(orDefault(cfg.Docker.DBContainer, "none")))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  "+labelStyle.Render("log:"))
		fmt.Fprintln(out, "    level: "+infoStyle.Render(cfg.Log.Level))
		fmt.Fprintln(out, "    format: "+infoStyle.Render(cfg.Log.Format))
		fmt.Fprintln(out)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configManager.Path())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configManager.Path()
		if _, err := os.Stat(path); err == nil && !configForce {
			return failed(fmt.Errorf("%s already exists (use --force to overwrite)", path))
		}

		*configManager.GetConfig() = *models.DefaultGlobalConfig()
		if err := configManager.Save(); err != nil {
			return failed(fmt.Errorf("failed to save config: %w", err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("  [done]")+" wrote "+path)
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}
