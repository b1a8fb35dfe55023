package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"apivault/internal/models"
)

func (c *cli) apisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apis",
		Short: "Manage stored API endpoints",
	}

	list := &cobra.Command{
		Use:   "list [search]",
		Short: "List APIs, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			apis, err := c.store.ListApis(c.ctx(cmd), search)
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, apis)
			}
			rows := make([][]string, 0, len(apis))
			for _, a := range apis {
				rows = append(rows, []string{strconv.FormatInt(a.ID, 10), a.Name, a.URL, mask(a.Key), a.Description})
			}
			return printTable(c.out, []string{"ID", "NAME", "URL", "KEY", "DESCRIPTION"}, rows)
		},
	}

	var (
		id                          int64
		name, url, key, description string
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Create an API, or update one when --id matches",
		Long: `Save creates a new API record unless --id names an existing one, in which
case only the flags given are changed.

Example:
  vaultctl apis save --name "GLM API" --url https://open.bigmodel.cn --key sk-...
  vaultctl apis save --id 1718000000000 --description "prod key"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.ApiRecordPatch
			flags := cmd.Flags()
			if flags.Changed("id") {
				patch.ID = &id
			}
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("url") {
				patch.URL = &url
			}
			if flags.Changed("key") {
				patch.Key = &key
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			saved, err := c.store.SaveApi(c.ctx(cmd), patch)
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, saved)
			}
			_, err = fmt.Fprintf(c.out, "saved api %d\n", saved.ID)
			return err
		},
	}
	save.Flags().Int64Var(&id, "id", 0, "id of the record to update")
	save.Flags().StringVar(&name, "name", "", "display name")
	save.Flags().StringVar(&url, "url", "", "endpoint URL")
	save.Flags().StringVar(&key, "key", "", "API key")
	save.Flags().StringVar(&description, "description", "", "free-form notes")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an API by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := c.store.DeleteApi(c.ctx(cmd), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "deleted api %d\n", id)
			return err
		},
	}

	cmd.AddCommand(list, save, del)
	return cmd
}
