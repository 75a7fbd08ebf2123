package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/model"
)

func (c *cli) newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Theme and language preferences",
	}

	cmd.AddCommand(c.newSettingsShowCmd())
	cmd.AddCommand(c.newSettingsSetCmd())

	return cmd
}

func printSettings(cmd *cobra.Command, s model.Settings) {
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "Theme:\t%s\n", s.Theme)
	fmt.Fprintf(w, "Language:\t%s\n", s.Language)
	_ = w.Flush()
}

func (c *cli) newSettingsShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Session.RequireUser(cmd.Context())
			if err != nil {
				return err
			}
			settings, err := c.app.Settings.Get(cmd.Context(), me.ID)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, settings)
			}
			printSettings(cmd, settings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (c *cli) newSettingsSetCmd() *cobra.Command {
	var theme, language string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change theme and/or language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Session.RequireUser(cmd.Context())
			if err != nil {
				return err
			}

			var upd model.SettingsUpdate
			if cmd.Flags().Changed("theme") {
				t := model.Theme(theme)
				upd.Theme = &t
			}
			if cmd.Flags().Changed("language") {
				l := model.Language(language)
				upd.Language = &l
			}
			if upd.Theme == nil && upd.Language == nil {
				return fmt.Errorf("nothing to update; pass --theme and/or --language")
			}

			settings, err := c.app.Settings.Update(cmd.Context(), me.ID, upd)
			if err != nil {
				return err
			}
			printSettings(cmd, settings)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "default, blue, green, red or orange")
	cmd.Flags().StringVar(&language, "language", "", "en or fr")
	return cmd
}
