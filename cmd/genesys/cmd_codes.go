package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

func (c *cli) newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <ydke-code>",
		Short: "Decode a ydke:// deck code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			decoded, err := c.codes().Decode(cmd.Context(), input)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd, decoded)
			}
			printDecoded(cmd, decoded)
			return nil
		},
	}
}

func printDecoded(cmd *cobra.Command, decoded *facade.DecodedDeck) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Code: %s\n", decoded.Code)
	for _, z := range deck.AllZones {
		ids := decoded.Deck.Section(z)
		fmt.Fprintf(out, "%s (%d): %s\n", z, len(ids), joinIDs(ids))
	}
	if decoded.Unresolved > 0 {
		fmt.Fprintf(out, "Missing IDs: %d\n", decoded.Unresolved)
	}
}

func joinIDs(ids []deck.CardID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, " ")
}

func (c *cli) newEncodeCmd() *cobra.Command {
	var mainIDs, extraIDs, sideIDs []uint

	cmd := &cobra.Command{
		Use:   "encode [ydk-file]",
		Short: "Encode a YDK file or card IDs as a ydke:// code",
		Long: `Encode a deck as a canonical ydke:// code. The deck is read from a YDK
file (or "-" for standard input) or assembled from --main, --extra and
--side. A card ID of 0 marks a missing card.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) == 1 {
				var err error
				if code, err = c.deckCode(cmd, args[0]); err != nil {
					return err
				}
			} else {
				d := deck.Deck{Main: toIDs(mainIDs), Extra: toIDs(extraIDs), Side: toIDs(sideIDs)}
				var err error
				if code, err = c.codes().Encode(cmd.Context(), d); err != nil {
					return err
				}
			}

			if c.jsonOut {
				return c.printJSON(cmd, map[string]string{"code": code})
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	cmd.Flags().UintSliceVar(&mainIDs, "main", nil, "main deck card IDs")
	cmd.Flags().UintSliceVar(&extraIDs, "extra", nil, "extra deck card IDs")
	cmd.Flags().UintSliceVar(&sideIDs, "side", nil, "side deck card IDs")
	return cmd
}

func toIDs(values []uint) []deck.CardID {
	ids := make([]deck.CardID, len(values))
	for i, v := range values {
		ids[i] = deck.CardID(v)
	}
	return ids
}

func (c *cli) newShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <deck>",
		Short: "Compress a deck into a share token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := c.deckCode(cmd, args[0])
			if err != nil {
				return err
			}
			shared, err := c.codes().Share(cmd.Context(), code)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd, shared)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.Token)
			return nil
		},
	}
}

func (c *cli) newUnshareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unshare <token>",
		Short: "Expand a share token into a ydke:// code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			decoded, err := c.codes().Unshare(cmd.Context(), token)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd, decoded)
			}
			fmt.Fprintln(cmd.OutOrStdout(), decoded.Code)
			return nil
		},
	}
}
