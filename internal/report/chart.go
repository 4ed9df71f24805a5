package report

import (
	"fmt"
	"strings"

	"github.com/engagemark/engagemark/internal/bench"
)

// Charts are rendered as self-contained SVG: one grouped bar chart per
// file, colstore in one color, sqlite in the other. Heights scale against
// the largest value in the chart.

const (
	chartWidth   = 900
	chartHeight  = 420
	plotTop      = 60
	plotBottom   = 360
	plotLeft     = 60
	colstoreFill = "#4c78a8"
	sqliteFill   = "#f58518"
)

type barGroup struct {
	label  string
	values []float64 // one per series
}

// loadChartSVG compares load time and throughput between the backends.
func (r *Report) loadChartSVG() []byte {
	groups := []barGroup{
		{
			label: "load time (s)",
			values: []float64{
				r.ColumnStore.Load.LoadTime,
				r.SQLStore.Load.LoadTime,
			},
		},
		{
			label: "throughput (krec/s)",
			values: []float64{
				r.ColumnStore.Load.RecordsPerSecond / 1000,
				r.SQLStore.Load.RecordsPerSecond / 1000,
			},
		},
	}
	return renderGroupedBars("Load comparison", groups)
}

// benchChartSVG compares per-operation benchmark timings.
func (r *Report) benchChartSVG() []byte {
	groups := make([]barGroup, 0, len(bench.Operations))
	for _, op := range bench.Operations {
		label := strings.TrimSuffix(op, "_time")
		groups = append(groups, barGroup{
			label: label,
			values: []float64{
				r.ColumnStore.Bench[op],
				r.SQLStore.Bench[op],
			},
		})
	}
	return renderGroupedBars("Benchmark comparison (seconds)", groups)
}

func renderGroupedBars(title string, groups []barGroup) []byte {
	maxVal := 0.0
	for _, g := range groups {
		for _, v := range g.values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="sans-serif">`+"\n",
		chartWidth, chartHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", chartWidth, chartHeight)
	fmt.Fprintf(&b, `<text x="%d" y="30" font-size="18" text-anchor="middle">%s</text>`+"\n",
		chartWidth/2, escapeXML(title))

	// Legend.
	fmt.Fprintf(&b, `<rect x="%d" y="42" width="12" height="12" fill="%s"/><text x="%d" y="52" font-size="12">colstore</text>`+"\n",
		plotLeft, colstoreFill, plotLeft+16)
	fmt.Fprintf(&b, `<rect x="%d" y="42" width="12" height="12" fill="%s"/><text x="%d" y="52" font-size="12">sqlite</text>`+"\n",
		plotLeft+100, sqliteFill, plotLeft+116)

	plotHeight := float64(plotBottom - plotTop)
	groupWidth := float64(chartWidth-plotLeft-20) / float64(len(groups))
	barWidth := groupWidth / 3

	fills := []string{colstoreFill, sqliteFill}
	for gi, g := range groups {
		groupX := float64(plotLeft) + float64(gi)*groupWidth
		for si, v := range g.values {
			h := v / maxVal * plotHeight
			x := groupX + float64(si)*barWidth + barWidth/2
			y := float64(plotBottom) - h
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				x, y, barWidth-2, h, fills[si%len(fills)])
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="10" text-anchor="middle">%.4g</text>`+"\n",
				x+barWidth/2, y-4, v)
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="11" text-anchor="middle">%s</text>`+"\n",
			groupX+groupWidth/2, plotBottom+20, escapeXML(g.label))
	}

	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n",
		plotLeft, plotBottom, chartWidth-20, plotBottom)
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
