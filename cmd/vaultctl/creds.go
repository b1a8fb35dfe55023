package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"apivault/internal/models"
)

func (c *cli) credsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage stored site credentials",
	}

	list := &cobra.Command{
		Use:   "list [search]",
		Short: "List credentials, optionally filtered by site name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			creds, err := c.store.ListCredentials(c.ctx(cmd), search)
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, creds)
			}
			rows := make([][]string, 0, len(creds))
			for _, cr := range creds {
				rows = append(rows, []string{strconv.FormatInt(cr.ID, 10), cr.SiteName, cr.URL, cr.Username, mask(cr.Password), cr.CreatedAt})
			}
			return printTable(c.out, []string{"ID", "SITE", "URL", "USERNAME", "PASSWORD", "CREATED"}, rows)
		},
	}

	var (
		id                                int64
		siteName, url, username, password string
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Create a credential, or update one when --id matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.CredentialPatch
			flags := cmd.Flags()
			if flags.Changed("id") {
				patch.ID = &id
			}
			if flags.Changed("site-name") {
				patch.SiteName = &siteName
			}
			if flags.Changed("url") {
				patch.URL = &url
			}
			if flags.Changed("username") {
				patch.Username = &username
			}
			if flags.Changed("password") {
				patch.Password = &password
			}
			saved, err := c.store.SaveCredential(c.ctx(cmd), patch)
			if err != nil {
				return err
			}
			if c.flagJSON {
				return printJSON(c.out, saved)
			}
			_, err = fmt.Fprintf(c.out, "saved credential %d\n", saved.ID)
			return err
		},
	}
	save.Flags().Int64Var(&id, "id", 0, "id of the record to update")
	save.Flags().StringVar(&siteName, "site-name", "", "site name")
	save.Flags().StringVar(&url, "url", "", "site URL")
	save.Flags().StringVar(&username, "username", "", "login name")
	save.Flags().StringVar(&password, "password", "", "password")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credential by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := c.store.DeleteCredential(c.ctx(cmd), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "deleted credential %d\n", id)
			return err
		},
	}

	cmd.AddCommand(list, save, del)
	return cmd
}
