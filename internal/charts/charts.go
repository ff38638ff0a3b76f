// Package charts renders deck point breakdowns as interactive HTML charts.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title  string   // Chart title
	Width  string   // Chart width (e.g., "900px")
	Height string   // Chart height (e.g., "500px")
	Theme  string   // Chart theme
	Colors []string // One color per section: main, extra, side

	// IncludeFree also charts cards that cost no points.
	IncludeFree bool
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Genesys points",
		Width:  "900px",
		Height: "500px",
		Theme:  "white",
		Colors: []string{"#5470C6", "#91CC75", "#FAC858"},
	}
}

// DataPoint is one bar: a card group and the points it costs.
type DataPoint struct {
	Label string
	Zone  deck.Zone
	Value int
}

// PointsData flattens a breakdown into bars in section order.
func PointsData(result *breakdown.Result, includeFree bool) []DataPoint {
	var data []DataPoint
	for _, z := range deck.AllZones {
		for _, g := range result.Section(z).Groups {
			if g.TotalPoints == 0 && !includeFree {
				continue
			}
			data = append(data, DataPoint{
				Label: fmt.Sprintf("%dx %s", g.Count, g.Name),
				Zone:  z,
				Value: g.TotalPoints,
			})
		}
	}
	return data
}

// RenderPointsChart writes a stacked bar chart of the points each card group
// costs, one series per deck section, as a standalone HTML page.
func RenderPointsChart(w io.Writer, result *breakdown.Result, config ChartConfig) error {
	if result == nil {
		return fmt.Errorf("no breakdown to chart")
	}
	if len(config.Colors) < len(deck.AllZones) {
		config.Colors = DefaultChartConfig().Colors
	}

	subtitle := fmt.Sprintf("Total: %d points", result.TotalPoints)
	if result.PointCap > 0 {
		subtitle = fmt.Sprintf("Total: %d / %d points", result.TotalPoints, result.PointCap)
		if result.OverCap {
			subtitle += " (over cap)"
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: config.Title,
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors[:len(deck.AllZones)])),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Points",
		}),
	)

	data := PointsData(result, config.IncludeFree)
	labels := make([]string, len(data))
	for i, p := range data {
		labels[i] = p.Label
	}
	bar.SetXAxis(labels)

	// Every series spans the whole axis; slots of other sections stay
	// empty so the stack shows one colored bar per group.
	for _, z := range deck.AllZones {
		values := make([]opts.BarData, len(data))
		for i, p := range data {
			if p.Zone == z {
				values[i] = opts.BarData{Value: p.Value}
			} else {
				values[i] = opts.BarData{Value: "-"}
			}
		}
		bar.AddSeries(sectionName(z), values,
			charts.WithBarChartOpts(opts.BarChart{Stack: "points"}),
		)
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func sectionName(z deck.Zone) string {
	switch z {
	case deck.Main:
		return "Main Deck"
	case deck.Extra:
		return "Extra Deck"
	default:
		return "Side Deck"
	}
}
