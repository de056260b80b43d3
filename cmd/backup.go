package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/aelpxy/wikibak/internal/backup"
	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/spf13/cobra"
)

var (
	backupDest        string
	backupWiki        string
	backupSingle      bool
	backupPrefix      string
	backupDereference bool
	backupFullFS      bool
	backupSkipDB      bool
	backupSkipPages   bool
	backupSkipFiles   bool
	backupDBContainer string
	backupNoLock      bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up a wiki installation",
	Long: "Dump the database, the page content and the uploaded images (or the whole\n" +
		"installation with --full-fs) while the wiki is read-only.",
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logging.With("backup")

	root, err := filepath.Abs(backupWiki)
	if err != nil {
		return failed(fmt.Errorf("invalid installation directory: %w", err))
	}

	ctx, cancel := signalContext()
	defer cancel()

	unlock, err := acquireLock(root, backupNoLock)
	if err != nil {
		return failed(err)
	}
	defer unlock()

	local := newLocalRunner()
	db, closeDB, err := dbRunner(ctx, local, backupDBContainer)
	if err != nil {
		return failed(err)
	}
	defer closeDB()

	manager := backup.NewManager(backup.Tools{
		Runner:    local,
		DB:        db,
		MySQLDump: cfg.Tools.MySQLDump,
		PHP:       cfg.Tools.PHP,
		Archiver:  newArchiver(local),
	}, log)

	var record *backup.Record
	registry, err := backup.NewRegistry()
	if err == nil {
		err = registry.Initialize()
	}
	if err == nil {
		record, err = registry.Start(root, backupDest, time.Now())
	}
	if err != nil {
		log.Warn().Err(err).Msg("backup history unavailable, continuing without it")
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("==> backing up: %s", root)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, progressStyle.Render("  --> entering maintenance mode..."))

	result, runErr := manager.Run(ctx, backup.Options{
		Installation:       root,
		Destination:        backupDest,
		Prefix:             backupPrefix,
		SingleArchive:      backupSingle,
		Dereference:        backupDereference,
		FullFilesystem:     backupFullFS,
		SkipDatabase:       backupSkipDB,
		SkipPages:          backupSkipPages,
		SkipFiles:          backupSkipFiles,
		MaintenanceMessage: cfg.Maintenance.Message,
	})

	if record != nil {
		record.Complete(result, runErr, time.Now())
		if err := registry.Update(*record); err != nil {
			log.Warn().Err(err).Msg("failed to update backup history")
		}
	}

	if runErr != nil {
		fmt.Fprintln(out, errorStyle.Render("  [error] backup failed"))
		return failed(runErr)
	}

	fmt.Fprintln(out, progressStyle.Render("  --> leaving maintenance mode..."))
	fmt.Fprintln(out)

	if len(result.Artifacts) == 0 {
		fmt.Fprintln(out, warnStyle.Render("  [!] nothing was backed up"))
	} else {
		fmt.Fprintln(out, successStyle.Render("  [done] backup created successfully"))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, labelStyle.Render("  backup details:"))
	if record != nil {
		fmt.Fprintf(out, "    %s %s\n", dimStyle.Render("id:"), valueStyle.Render(record.ID))
	}
	fmt.Fprintf(out, "    %s %s\n", dimStyle.Render("prefix:"), valueStyle.Render(result.Prefix))
	if result.Profile.Name != "" {
		fmt.Fprintf(out, "    %s %s\n", dimStyle.Render("database:"), valueStyle.Render(result.Profile.Name))
		fmt.Fprintf(out, "    %s %s\n", dimStyle.Render("charset:"), valueStyle.Render(result.Profile.CharsetOrDefault()))
	}
	for _, a := range result.Artifacts {
		fmt.Fprintf(out, "    %s %s %s\n",
			dimStyle.Render(string(a.Kind)+":"),
			valueStyle.Render(a.Path),
			dimStyle.Render("("+utils.FormatBytes(backup.Size(a))+")"))
	}
	fmt.Fprintln(out)

	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  [!] %d warning(s):", len(result.Warnings))))
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "    %s\n", dimStyle.Render(w))
		}
		fmt.Fprintln(out)
	}

	if backupSingle && len(result.Artifacts) == 1 {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("  restore with: wikibak restore --archive %s --wiki %s --root-password <password>",
			result.Artifacts[0].Path, root)))
		fmt.Fprintln(out)
	}
	return nil
}

func init() {
	backupCmd.Flags().StringVar(&backupDest, "dest", "", "destination directory for the backup files")
	backupCmd.Flags().StringVar(&backupWiki, "wiki", "", "wiki installation directory")
	backupCmd.Flags().BoolVar(&backupSingle, "single", false, "bundle all files into one archive")
	backupCmd.Flags().StringVar(&backupPrefix, "prefix", "", "file name prefix (default: current date)")
	backupCmd.Flags().BoolVar(&backupDereference, "dereference", false, "follow symlinks when archiving images")
	backupCmd.Flags().BoolVar(&backupFullFS, "full-fs", false, "archive the whole installation instead of images")
	backupCmd.Flags().BoolVar(&backupSkipDB, "skip-db", false, "skip the database dump")
	backupCmd.Flags().BoolVar(&backupSkipPages, "skip-pages", false, "skip the XML page dump")
	backupCmd.Flags().BoolVar(&backupSkipFiles, "skip-files", false, "skip the images or filesystem archive")
	backupCmd.Flags().StringVar(&backupDBContainer, "db-container", "", "run mysqldump inside this docker container")
	backupCmd.Flags().BoolVar(&backupNoLock, "no-lock", false, "do not take the per-installation run lock")
	backupCmd.MarkFlagRequired("dest")
	backupCmd.MarkFlagRequired("wiki")
	rootCmd.AddCommand(backupCmd)
}
