package deckexport

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/genesys-companion/internal/charts"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
)

// ExportFormat represents the format to export the deck in.
type ExportFormat string

const (
	FormatYDK       ExportFormat = "ydk"       // .ydk deck list
	FormatYDKE      ExportFormat = "ydke"      // ydke:// deck code
	FormatShare     ExportFormat = "share"     // compressed share token
	FormatBreakdown ExportFormat = "breakdown" // plain-text points report
	FormatChart     ExportFormat = "chart"     // HTML bar chart of points
)

// NeedsBreakdown reports whether the format is built from an aggregated deck.
func (f ExportFormat) NeedsBreakdown() bool {
	return f == FormatBreakdown || f == FormatChart
}

// ExportOptions controls deck export behavior.
type ExportOptions struct {
	Format    ExportFormat
	Name      string // Deck name, used for the suggested filename
	CreatedBy string // Written into the YDK "#created by" line
}

// DeckExport represents an exported deck.
type DeckExport struct {
	Content  string       `json:"content"`
	Format   ExportFormat `json:"format"`
	Filename string       `json:"filename"`

	// Omitted counts placeholder slots left out of a YDK export.
	Omitted int `json:"omitted"`
}

// Export exports a deck to the specified format. The breakdown result is
// only needed for formats where NeedsBreakdown is true.
func Export(d deck.Deck, result *breakdown.Result, options *ExportOptions) (*DeckExport, error) {
	if options == nil {
		options = &ExportOptions{Format: FormatYDK}
	}

	out := &DeckExport{Format: options.Format}
	base := sanitizeFilename(options.Name)

	switch options.Format {
	case FormatYDK:
		out.Content, out.Omitted = YDK(d, options.CreatedBy)
		out.Filename = base + ".ydk"
	case FormatYDKE:
		out.Content = deckcode.Encode(d)
		out.Filename = base + ".txt"
	case FormatShare:
		token, err := deckcode.EncodeShareToken(deckcode.Encode(d))
		if err != nil {
			return nil, err
		}
		out.Content = token
		out.Filename = base + ".txt"
	case FormatBreakdown:
		if result == nil {
			return nil, fmt.Errorf("breakdown export requires an aggregated deck")
		}
		out.Content = Breakdown(result)
		out.Filename = base + "-points.txt"
	case FormatChart:
		if result == nil {
			return nil, fmt.Errorf("chart export requires an aggregated deck")
		}
		config := charts.DefaultChartConfig()
		if options.Name != "" {
			config.Title = options.Name
		}
		var sb strings.Builder
		if err := charts.RenderPointsChart(&sb, result, config); err != nil {
			return nil, err
		}
		out.Content = sb.String()
		out.Filename = base + "-points.html"
	default:
		return nil, fmt.Errorf("unsupported export format: %s", options.Format)
	}

	return out, nil
}

// YDK writes d as a YDK deck list and returns the number of placeholder
// slots that were left out, since a YDK line cannot carry ID 0.
// Format:
//
//	#created by <createdBy>
//	#main
//	89631139
//	#extra
//	!side
func YDK(d deck.Deck, createdBy string) (string, int) {
	var sb strings.Builder
	if createdBy == "" {
		createdBy = "genesys-companion"
	}
	sb.WriteString("#created by " + createdBy + "\n")

	omitted := 0
	for _, z := range deck.AllZones {
		sb.WriteString(ydkHeader(z))
		sb.WriteString("\n")
		for _, id := range d.Section(z) {
			if id.IsUnresolved() {
				omitted++
				continue
			}
			fmt.Fprintf(&sb, "%d\n", id)
		}
	}
	return sb.String(), omitted
}

func ydkHeader(z deck.Zone) string {
	if z == deck.Side {
		return "!side"
	}
	return "#" + z.String()
}

// Breakdown renders an aggregated deck as a plain-text points report.
// Format:
//
//	Main Deck (40 cards, 33 points)
//	3x Pot of Greed (10) = 30
//	...
//	Total: 33 / 100 points
func Breakdown(result *breakdown.Result) string {
	var sb strings.Builder

	for i, z := range deck.AllZones {
		section := result.Section(z)
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%d cards, %d points)\n", sectionTitle(z), section.Cards, section.Points)
		for _, g := range section.Groups {
			sb.WriteString(groupLine(g))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if result.PointCap > 0 {
		fmt.Fprintf(&sb, "Total: %d / %d points", result.TotalPoints, result.PointCap)
		if result.OverCap {
			sb.WriteString(" (over cap)")
		}
	} else {
		fmt.Fprintf(&sb, "Total: %d points", result.TotalPoints)
	}
	sb.WriteString("\n")

	if result.MissingIDs > 0 {
		fmt.Fprintf(&sb, "Missing IDs: %d\n", result.MissingIDs)
	}
	if result.UnknownCards > 0 {
		fmt.Fprintf(&sb, "Not in point list: %d\n", result.UnknownCards)
	}
	if result.RestrictedCards > 0 {
		fmt.Fprintf(&sb, "Link/Pendulum cards: %d\n", result.RestrictedCards)
	}

	return sb.String()
}

func groupLine(g breakdown.Group) string {
	line := fmt.Sprintf("%dx %s (%d) = %d", g.Count, g.Name, g.PointsPerCopy, g.TotalPoints)
	var flags []string
	if g.NotInList && !g.ID.IsUnresolved() {
		flags = append(flags, "not in list")
	}
	if g.Restricted {
		flags = append(flags, "restricted")
	}
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ", ") + "]"
	}
	return line
}

func sectionTitle(z deck.Zone) string {
	switch z {
	case deck.Main:
		return "Main Deck"
	case deck.Extra:
		return "Extra Deck"
	default:
		return "Side Deck"
	}
}

// sanitizeFilename removes invalid characters from filename.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if len(result) > 100 {
		result = result[:100]
	}
	if result == "" {
		result = "deck"
	}
	return result
}
