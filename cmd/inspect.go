package cmd

import (
	"fmt"
	"os"

	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/aelpxy/wikibak/pkg/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var inspectStaging string

var inspectCmd = &cobra.Command{
	Use:   "inspect [archive]",
	Short: "Show what a backup archive contains",
	Long:  "Expand a consolidated backup archive into a temporary directory and list its members",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logging.With("inspect")

	ctx, cancel := signalContext()
	defer cancel()

	staging := inspectStaging
	if staging == "" {
		staging = cfg.Restore.StagingRoot
	}

	manifest, err := newArchiver(newLocalRunner()).Inspect(ctx, args[0], staging)
	if err != nil {
		return failed(err)
	}
	defer func() {
		if err := manifest.Release(); err != nil {
			log.Error().Err(err).Msg("failed to remove staging directory")
		}
	}()

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("==> archive: %s", manifest.Archive)))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("prefix:"), valueStyle.Render(orDash(manifest.Prefix)))
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("charset:"), valueStyle.Render(orDash(manifest.Charset)))
	fmt.Fprintln(out)

	rows := [][]string{}
	for _, kind := range []models.ArtifactKind{
		models.ArtifactDatabase,
		models.ArtifactPages,
		models.ArtifactImages,
		models.ArtifactFilesystem,
	} {
		if !manifest.Has(kind) {
			rows = append(rows, []string{string(kind), dimStyle.Render("missing"), "-"})
			continue
		}
		var size int64
		if info, err := os.Stat(manifest.Path(kind)); err == nil {
			size = info.Size()
		}
		rows = append(rows, []string{string(kind), relMember(manifest, kind), utils.FormatBytes(size)})
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
		Headers("kind", "member", "size").
		Rows(rows...)

	fmt.Fprintln(out, t)
	fmt.Fprintln(out)

	if !manifest.Has(models.ArtifactDatabase) {
		fmt.Fprintln(out, warnStyle.Render("  [!] archive has no database dump, a restore will not import a database"))
		fmt.Fprintln(out)
	}
	return nil
}

func relMember(m *models.Manifest, kind models.ArtifactKind) string {
	p := m.Path(kind)
	if len(p) > len(m.Staging)+1 && p[:len(m.Staging)] == m.Staging {
		return p[len(m.Staging)+1:]
	}
	return p
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	inspectCmd.Flags().StringVar(&inspectStaging, "staging", "", "directory the archive is expanded under (default: system temp)")
	rootCmd.AddCommand(inspectCmd)
}
