// Package report renders an optional HTML diagnostics page for a solrad
// run: the sun-altitude curve sampled across the run's epochs and a
// histogram of lit vs shadowed voxel-epochs, using the usual go-echarts
// chart-construction style (SetGlobalOptions/AddSeries/Render-to-buffer),
// rendered straight to a file since solrad has no running web server.
package report

import (
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
)

// Stats summarizes one run's voxel-epoch illumination counts, gathered by
// the pipeline as it walks sun-epoch buckets.
type Stats struct {
	LitCount      int
	ShadowedCount int
}

// Write renders a two-chart HTML page (sun-altitude line + lit/shadowed
// bar) to path.
func Write(path string, epochs []sunpos.Epoch, stats Stats) error {
	line := altitudeLineChart(epochs)
	bar := litShadowedBarChart(stats)

	page := components.NewPage()
	page.AddCharts(line, bar)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return page.Render(f)
}

func altitudeLineChart(epochs []sunpos.Epoch) *charts.Line {
	x := make([]string, len(epochs))
	y := make([]opts.LineData, len(epochs))
	for i, e := range epochs {
		x[i] = e.Time.Format(time.RFC3339)
		y[i] = opts.LineData{Value: e.Position.Altitude}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "solrad sun altitude", Theme: "dark", Width: "960px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Sun altitude over run epochs"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "epoch"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "altitude (deg)"}),
	)
	line.SetXAxis(x).AddSeries("altitude", y)
	return line
}

func litShadowedBarChart(stats Stats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "480px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Lit vs shadowed voxel-epochs"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"lit", "shadowed"}).
		AddSeries("voxel-epochs", []opts.BarData{
			{Value: stats.LitCount},
			{Value: stats.ShadowedCount},
		}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}
