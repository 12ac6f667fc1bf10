// Package export renders recorded trajectories as SVG charts.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/spinsim/msd/internal/msd"
)

// Series is one named line of a chart.
type Series struct {
	Name   string
	Stroke string
	Points []float64
}

// EnergySeries extracts the total and regional energy traces from a
// record.
func EnergySeries(record []msd.Results) []Series {
	u := Series{Name: "U", Stroke: "#00ff00"}
	um := Series{Name: "Um", Stroke: "#ffaa00"}
	for _, snap := range record {
		u.Points = append(u.Points, snap.U)
		um.Points = append(um.Points, snap.Um)
	}
	return []Series{u, um}
}

// MagnetizationSeries extracts the magnetization norm traces for the
// whole device and each region.
func MagnetizationSeries(record []msd.Results) []Series {
	m := Series{Name: "|M|", Stroke: "#00ff00"}
	ml := Series{Name: "|ML|", Stroke: "#00aaff"}
	mr := Series{Name: "|MR|", Stroke: "#ff00aa"}
	mm := Series{Name: "|Mm|", Stroke: "#ffaa00"}
	for _, snap := range record {
		m.Points = append(m.Points, snap.M.Norm())
		ml.Points = append(ml.Points, snap.ML.Norm())
		mr.Points = append(mr.Points, snap.MR.Norm())
		mm.Points = append(mm.Points, snap.Mm.Norm())
	}
	return []Series{m, ml, mr, mm}
}

// ChartSVG renders the series as polylines over the snapshot index,
// sharing one vertical scale.
func ChartSVG(series []Series, width, height int) string {
	points := 0
	for _, s := range series {
		if len(s.Points) > points {
			points = len(s.Points)
		}
	}
	if points < 2 {
		return ""
	}

	minY, maxY := series[0].Points[0], series[0].Points[0]
	for _, s := range series {
		for _, v := range s.Points {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Stroke))
		for i, v := range s.Points {
			x := float64(i) / float64(len(s.Points)-1) * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	// Legend down the left edge.
	for i, s := range series {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+i*16, s.Stroke, s.Name))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteChart renders energy and magnetization charts of a record into
// one SVG file, stacked vertically.
func WriteChart(path string, record []msd.Results, width, height int) error {
	energy := ChartSVG(EnergySeries(record), width, height)
	mag := ChartSVG(MagnetizationSeries(record), width, height)
	if energy == "" || mag == "" {
		return fmt.Errorf("record too short to chart (%d snapshots)", len(record))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">
`, width, 2*height))
	sb.WriteString(nested(energy, 0))
	sb.WriteString(nested(mag, height))
	sb.WriteString("</svg>\n")

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// nested strips the xml declaration and re-roots a chart at a vertical
// offset so two charts can stack in one document.
func nested(chart string, yOffset int) string {
	body := chart
	if i := strings.Index(body, "<svg"); i >= 0 {
		body = body[i:]
	}
	return fmt.Sprintf("<g transform=\"translate(0 %d)\">\n%s</g>\n", yOffset, body)
}
