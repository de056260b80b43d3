package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/internal/restore"
	"github.com/spf13/cobra"
)

var (
	restoreArchive      string
	restoreWiki         string
	restoreRootPassword string
	restoreRecreateDB   bool
	restoreRecreateUser bool
	restoreStaging      string
	restoreSkipDB       bool
	restoreSkipFiles    bool
	restoreDBContainer  string
	restoreNoLock       bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a wiki installation from a backup archive",
	Long: "Expand a consolidated backup archive, restore the files into the installation\n" +
		"directory and import the database dump.",
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logging.With("restore")

	root, err := filepath.Abs(restoreWiki)
	if err != nil {
		return failed(fmt.Errorf("invalid installation directory: %w", err))
	}

	ctx, cancel := signalContext()
	defer cancel()

	unlock, err := acquireLock(root, restoreNoLock)
	if err != nil {
		return failed(err)
	}
	defer unlock()

	local := newLocalRunner()
	db, closeDB, err := dbRunner(ctx, local, restoreDBContainer)
	if err != nil {
		return failed(err)
	}
	defer closeDB()

	staging := restoreStaging
	if staging == "" {
		staging = cfg.Restore.StagingRoot
	}

	manager := restore.NewManager(restore.Tools{
		DB:       db,
		MySQL:    cfg.Tools.MySQL,
		Archiver: newArchiver(local),
	}, log)

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("==> restoring: %s", filepath.Base(restoreArchive))))
	fmt.Fprintln(out)

	report, err := manager.Run(ctx, restore.Options{
		Archive:            restoreArchive,
		Installation:       root,
		RootPassword:       restoreRootPassword,
		RecreateDatabase:   restoreRecreateDB,
		RecreateUser:       restoreRecreateUser,
		StagingRoot:        staging,
		SkipDatabase:       restoreSkipDB,
		SkipFiles:          restoreSkipFiles,
		MaintenanceMessage: cfg.Maintenance.Message,
	})
	if report != nil {
		for _, step := range report.Steps {
			fmt.Fprintln(out, progressStyle.Render("  --> "+step))
		}
		fmt.Fprintln(out)
		for _, w := range report.Warnings {
			fmt.Fprintln(out, warnStyle.Render("  [!] "+w))
		}
	}
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("  [error] restore failed"))
		return failed(err)
	}

	if len(report.Problems) > 0 {
		for _, p := range report.Problems {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("  [✗] %v", p)))
		}
		fmt.Fprintln(out)
		return failed(fmt.Errorf("restore incomplete: %d problem(s)", len(report.Problems)))
	}

	fmt.Fprintln(out, successStyle.Render("  [done] restore completed"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "    %s %s\n", dimStyle.Render("installation:"), valueStyle.Render(root))
	if report.Profile.Name != "" {
		fmt.Fprintf(out, "    %s %s\n", dimStyle.Render("database:"), valueStyle.Render(report.Profile.Name))
	}
	fmt.Fprintln(out)
	return nil
}

func init() {
	restoreCmd.Flags().StringVar(&restoreArchive, "archive", "", "consolidated backup archive")
	restoreCmd.Flags().StringVar(&restoreWiki, "wiki", "", "wiki installation directory (created if missing)")
	restoreCmd.Flags().StringVar(&restoreRootPassword, "root-password", "", "database root password")
	restoreCmd.Flags().BoolVar(&restoreRecreateDB, "recreate-db", false, "create the database before importing")
	restoreCmd.Flags().BoolVar(&restoreRecreateUser, "recreate-user", false, "create the wiki database user and grant it access")
	restoreCmd.Flags().StringVar(&restoreStaging, "staging", "", "directory the archive is expanded under (default: system temp)")
	restoreCmd.Flags().BoolVar(&restoreSkipDB, "skip-db", false, "do not touch the database")
	restoreCmd.Flags().BoolVar(&restoreSkipFiles, "skip-files", false, "do not restore images or filesystem")
	restoreCmd.Flags().StringVar(&restoreDBContainer, "db-container", "", "run mysql inside this docker container")
	restoreCmd.Flags().BoolVar(&restoreNoLock, "no-lock", false, "do not take the per-installation run lock")
	restoreCmd.MarkFlagRequired("archive")
	restoreCmd.MarkFlagRequired("wiki")
	restoreCmd.MarkFlagRequired("root-password")
	rootCmd.AddCommand(restoreCmd)
}
