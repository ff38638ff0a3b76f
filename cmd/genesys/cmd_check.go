package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckexport"
)

var errOverCap = errors.New("deck is over the point cap")

func (c *cli) newCheckCmd() *cobra.Command {
	var (
		pointCap int
		sorts    []string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "check <deck>",
		Short: "Total a deck's Genesys points",
		Long: `Resolve every card of the deck, look up its Genesys points and print the
per-section breakdown against the point cap.

--sort takes a mode for every section ("points") or for one section
("extra=points"). Modes are "structural" and "points".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := c.deckCode(cmd, args[0])
			if err != nil {
				return err
			}

			req := &facade.BreakdownRequest{Code: code}
			if cmd.Flags().Changed("cap") {
				req.PointCap = &pointCap
			}
			if err := applySorts(req, sorts); err != nil {
				return err
			}

			a, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := a.Deck.Breakdown(cmd.Context(), req)
			if err != nil {
				return err
			}

			if c.jsonOut {
				if err := c.printJSON(cmd, resp); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprint(out, deckexport.Breakdown(resp.Result))
				if resp.PointSource != "" {
					fmt.Fprintf(out, "Point list: %s\n", resp.PointSource)
				}
				if resp.Incomplete {
					fmt.Fprintln(out, "Warning: some card names could not be resolved")
				}
			}

			if strict && resp.Result.OverCap {
				return errOverCap
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pointCap, "cap", 0, "point cap (default from config, 0 disables)")
	cmd.Flags().StringArrayVar(&sorts, "sort", nil, "sort mode, optionally per section (e.g. extra=points)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the deck is over the cap")
	return cmd
}

// applySorts parses --sort values into the request's per-section modes.
// Mode names are validated by the facade.
func applySorts(req *facade.BreakdownRequest, values []string) error {
	for _, v := range values {
		zoneName, mode, scoped := strings.Cut(v, "=")
		if !scoped {
			req.MainSort, req.ExtraSort, req.SideSort = v, v, v
			continue
		}
		zone, err := deck.ParseZone(zoneName)
		if err != nil {
			return fmt.Errorf("--sort %q: %w", v, err)
		}
		switch zone {
		case deck.Main:
			req.MainSort = mode
		case deck.Extra:
			req.ExtraSort = mode
		case deck.Side:
			req.SideSort = mode
		}
	}
	return nil
}

func (c *cli) newExportCmd() *cobra.Command {
	var (
		format    string
		name      string
		createdBy string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "export <deck>",
		Short: "Export a deck as YDK, ydke, share token, points report or chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := c.deckCode(cmd, args[0])
			if err != nil {
				return err
			}

			req := &facade.ExportRequest{Code: code, Format: format, Name: name, CreatedBy: createdBy}
			var export *deckexport.DeckExport
			if deckexport.ExportFormat(format).NeedsBreakdown() {
				a, err := c.application(cmd.Context())
				if err != nil {
					return err
				}
				export, err = a.Deck.Export(cmd.Context(), req)
				if err != nil {
					return err
				}
			} else {
				if export, err = c.codes().Export(cmd.Context(), req); err != nil {
					return err
				}
			}

			if export.Omitted > 0 {
				c.logger.Warn("Missing cards left out of the export", zap.Int("omitted", export.Omitted))
			}

			if c.jsonOut {
				return c.printJSON(cmd, export)
			}
			if outPath == "" {
				content := export.Content
				if !strings.HasSuffix(content, "\n") {
					content += "\n"
				}
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}
			if info, err := os.Stat(outPath); err == nil && info.IsDir() {
				outPath = filepath.Join(outPath, export.Filename)
			}
			if err := os.WriteFile(outPath, []byte(export.Content), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(deckexport.FormatYDK), "ydk, ydke, share, breakdown or chart")
	cmd.Flags().StringVar(&name, "name", "", "deck name, used for the file name")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "creator recorded in YDK output")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file or directory (default stdout)")
	return cmd
}
