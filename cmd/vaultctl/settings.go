package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"apivault/internal/models"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}

	get := &cobra.Command{
		Use:   "get [key]",
		Short: "Print all settings, or one key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.store.GetSettings(c.ctx(cmd))
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, ok := settings[args[0]]
				if !ok {
					return fmt.Errorf("setting %s not found", args[0])
				}
				if c.flagJSON {
					return printJSON(c.out, v)
				}
				_, err := fmt.Fprintln(c.out, v)
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, settings)
			}
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				v := settings[k]
				if k == models.SettingAPIKey {
					v = mask(settings.APIKey())
				}
				fmt.Fprintf(c.out, "%s=%v\n", k, v)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set key=value [key=value...]",
		Short: "Merge values into the settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := models.Settings{}
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || strings.TrimSpace(k) == "" {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				patch[strings.TrimSpace(k)] = v
			}
			if err := c.store.SaveSettings(c.ctx(cmd), patch); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.out, "updated %d setting(s)\n", len(patch))
			return err
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}
