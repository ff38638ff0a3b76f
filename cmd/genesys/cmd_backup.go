package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newBackupCmd() *cobra.Command {
	var (
		dir  string
		list bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the card cache database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			store := a.Storage()
			if store == nil {
				return errors.New("database is not available")
			}
			out := cmd.OutOrStdout()

			if list {
				backups, err := store.ListBackups(dir)
				if err != nil {
					return err
				}
				if c.jsonOut {
					return c.printJSON(cmd, backups)
				}
				for _, b := range backups {
					fmt.Fprintf(out, "%s  %s  %d bytes\n", b.Created.Format("2006-01-02 15:04:05"), b.Path, b.Size)
				}
				return nil
			}

			path, err := store.Backup(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd, map[string]string{"path": path})
			}
			fmt.Fprintln(out, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (default next to the database)")
	cmd.Flags().BoolVar(&list, "list", false, "list existing backups instead")
	return cmd
}
