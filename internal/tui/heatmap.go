package tui

import (
	"fmt"
	"strings"

	"github.com/aayushbajaj/activity-telemetry/internal/heatmap"
)

var heatRamp = []rune(" ░▒▓█")

// RenderHeatmap draws a density grid as shaded terminal cells.
func RenderHeatmap(g *heatmap.DensityGrid, cols, rows int) string {
	if g == nil || g.Empty() {
		return mutedStyle.Render("No samples in range")
	}
	var b strings.Builder
	for _, row := range g.Downsample(cols, rows) {
		var line strings.Builder
		for _, v := range row {
			idx := int(v * float64(len(heatRamp)-1))
			if v > 0 && idx == 0 {
				idx = 1
			}
			line.WriteRune(heatRamp[idx])
		}
		b.WriteString(heatStyle.Render(line.String()))
		b.WriteByte('\n')
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("monitor %d  %dx%d cells  %s tier  %.0f samples",
		g.Monitor, g.Width, g.Height, g.Tier, g.Samples)))
	return b.String()
}
