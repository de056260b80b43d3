package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/aelpxy/wikibak/internal/backup"
	"github.com/aelpxy/wikibak/internal/constants"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyWiki  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded backup runs",
	Long:  "List the backup runs recorded in ~/.wikibak/history.json, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a run from the history",
	Long:  "Remove a run from the history. The backup files themselves are left in place.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRemove,
}

func openRegistry() (*backup.Registry, error) {
	registry, err := backup.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	if err := registry.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return registry, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	registry, err := openRegistry()
	if err != nil {
		return failed(err)
	}

	var wiki string
	if historyWiki != "" {
		if wiki, err = filepath.Abs(historyWiki); err != nil {
			return failed(err)
		}
	}

	records := registry.List(wiki)
	if len(records) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no backups recorded"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("create a backup with: wikibak backup --wiki <dir> --dest <dir>"))
		return nil
	}

	total := len(records)
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("==> backup history (%d of %d)", len(records), total)))
	fmt.Fprintln(out)

	rows := [][]string{}
	var totalSize int64
	for _, rec := range records {
		totalSize += rec.SizeBytes

		statusColor := "10"
		if rec.Status == backup.StatusFailed {
			statusColor = "9"
		} else if rec.Status == backup.StatusInProgress {
			statusColor = "14"
		}

		statusStyled := lipgloss.NewStyle().
			Foreground(lipgloss.Color(statusColor)).
			Render(rec.Status)

		rows = append(rows, []string{
			rec.ID,
			rec.Installation,
			orDash(rec.Prefix),
			orDash(rec.Database),
			statusStyled,
			rec.CreatedAt.Format("2006-01-02 15:04"),
			utils.FormatBytes(rec.SizeBytes),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().
					Foreground(lipgloss.Color("86")).
					Bold(true).
					Align(lipgloss.Center)
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		}).
		Headers("id", "wiki", "prefix", "database", "status", "created", "size").
		Rows(rows...)

	fmt.Fprintln(out, t)
	fmt.Fprintln(out)
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("  total: %s", utils.FormatBytes(totalSize))))
	fmt.Fprintln(out)
	return nil
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	registry, err := openRegistry()
	if err != nil {
		return failed(err)
	}
	if err := registry.Delete(args[0]); err != nil {
		return failed(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("  [done]")+" removed "+args[0])
	return nil
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", constants.DefaultHistoryLimit, "maximum number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&historyWiki, "wiki", "", "only show runs of this installation")
	historyCmd.AddCommand(historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}
