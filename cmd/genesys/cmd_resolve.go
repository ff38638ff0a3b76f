package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/resolve"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

func (c *cli) newResolveCmd() *cobra.Command {
	var (
		zoneName string
		with     []string
	)

	cmd := &cobra.Command{
		Use:   "resolve <deck>",
		Short: "Replace missing card IDs with real cards",
		Long: `Fill the placeholder slots (card ID 0) of one section, in order, with the
cards given by --with. Each --with value is a card ID with an optional copy
count, e.g. --with 14558127:3. Cards beyond the number of placeholders are
ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := c.deckCode(cmd, args[0])
			if err != nil {
				return err
			}
			zone, err := deck.ParseZone(zoneName)
			if err != nil {
				return err
			}
			picks, err := parsePicks(with)
			if err != nil {
				return err
			}

			resp, err := c.codes().Resolve(cmd.Context(), &facade.ResolveRequest{Code: code, Zone: zone, Picks: picks})
			if err != nil {
				return err
			}

			if c.jsonOut {
				return c.printJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Code)
			fmt.Fprintf(out, "Replaced %d, still missing %d", resp.Applied, resp.Remaining)
			if resp.Ignored > 0 {
				fmt.Fprintf(out, ", ignored %d", resp.Ignored)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&zoneName, "zone", deck.Main.String(), "section to resolve: main, extra or side")
	cmd.Flags().StringSliceVar(&with, "with", nil, "replacement cards as id[:count]")
	return cmd
}

// parsePicks parses id[:count] values. The count defaults to 1.
func parsePicks(values []string) ([]resolve.Pick, error) {
	picks := make([]resolve.Pick, 0, len(values))
	for _, v := range values {
		idPart, countPart, hasCount := strings.Cut(strings.TrimSpace(v), ":")
		id, err := strconv.ParseUint(idPart, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid card ID %q", idPart)
		}
		count := 1
		if hasCount {
			if count, err = strconv.Atoi(countPart); err != nil || count < 1 {
				return nil, fmt.Errorf("invalid count in %q", v)
			}
		}
		picks = append(picks, resolve.Pick{ID: deck.CardID(id), Count: count})
	}
	return picks, nil
}
