package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newPointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "points [card name]",
		Short: "Show the active point list or one card's points",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				info := a.Points.Info(cmd.Context())
				if c.jsonOut {
					return c.printJSON(cmd, info)
				}
				if info.Entries == 0 {
					fmt.Fprintln(out, "No point list loaded")
					return nil
				}
				fmt.Fprintf(out, "Source: %s\n", info.Source)
				if info.Updated != nil {
					fmt.Fprintf(out, "Updated: %s\n", info.Updated.Format("2006-01-02"))
				}
				fmt.Fprintf(out, "Cards: %d (%d entries)\n", info.Cards, info.Entries)
				fmt.Fprintf(out, "Point cap: %d\n", info.PointCap)
				for _, col := range info.Collisions {
					fmt.Fprintf(out, "Duplicate: %q (%d) replaces %q (%d)\n",
						col.Kept.Name, col.Kept.Points, col.Replaced.Name, col.Replaced.Points)
				}
				return nil
			}

			lookup, err := a.Points.Lookup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd, lookup)
			}
			if !lookup.Listed {
				fmt.Fprintf(out, "%s: not in the point list (0)\n", lookup.Name)
				return nil
			}
			fmt.Fprintf(out, "%s: %d\n", lookup.Name, lookup.Points)
			return nil
		},
	}
}

func (c *cli) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <card name>",
		Short: "Search card metadata by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			found, err := a.Cards.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd, found)
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No cards found")
				return nil
			}
			index := a.Services.Points.Current()
			for _, m := range found {
				points, _ := index.Lookup(m.Name)
				fmt.Fprintf(out, "%-10d %-40s %-20s %d\n", m.ID, m.Name, m.Type, points)
			}
			return nil
		},
	}
}
