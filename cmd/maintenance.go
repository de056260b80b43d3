package cmd

import (
	"fmt"

	"github.com/aelpxy/wikibak/internal/logging"
	"github.com/aelpxy/wikibak/internal/maintenance"
	"github.com/spf13/cobra"
)

var maintenanceWiki string

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Manage the read-only mode of a wiki",
	Long:  "Switch the read-only maintenance flag in LocalSettings.php on or off",
}

var maintenanceOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Put the wiki into read-only mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newController().SetOn(); err != nil {
			return failed(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("  [done]")+" maintenance mode on")
		return nil
	},
}

var maintenanceOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Make the wiki writable again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newController().SetOff(); err != nil {
			return failed(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("  [done]")+" maintenance mode off")
		return nil
	},
}

var maintenanceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the wiki is in read-only mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := newController()
		state, err := ctl.Status()
		if err != nil {
			return failed(err)
		}

		out := cmd.OutOrStdout()
		style := successStyle
		if state == maintenance.On {
			style = warnStyle
		}
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("maintenance:"), style.Render(state.String()))
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("settings:"), dimStyle.Render(ctl.Path()))
		return nil
	},
}

func newController() *maintenance.Controller {
	return maintenance.NewController(maintenanceWiki, cfg.Maintenance.Message, logging.With("maintenance"))
}

func init() {
	maintenanceCmd.PersistentFlags().StringVar(&maintenanceWiki, "wiki", "", "wiki installation directory")
	maintenanceCmd.MarkPersistentFlagRequired("wiki")
	maintenanceCmd.AddCommand(maintenanceOnCmd)
	maintenanceCmd.AddCommand(maintenanceOffCmd)
	maintenanceCmd.AddCommand(maintenanceStatusCmd)
	rootCmd.AddCommand(maintenanceCmd)
}
