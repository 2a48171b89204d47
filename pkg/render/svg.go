package render

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const backgroundColor = "#0f0f1a"

// formatNumber renders a float the short way, trimming trailing zeros so
// widths like 3.5 and 1 come out as "3.5" and "1".
func formatNumber(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}

// SVG renders a complete standalone SVG document for a city's projected
// road network. Paths must already be in paint order (see SortLayers).
func SVG(city string, paths []ProjectedPath) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		CanvasSize, CanvasSize, CanvasSize, CanvasSize)
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="%s"/>`+"\n", CanvasSize, CanvasSize, backgroundColor)

	b.WriteString("  <g>\n")
	for _, p := range paths {
		fmt.Fprintf(&b,
			`    <path d="%s" stroke="white" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round" fill="none" opacity="%s"/>`+"\n",
			p.Path, formatNumber(p.StrokeWidth), formatNumber(p.Opacity))
	}
	b.WriteString("  </g>\n")

	fmt.Fprintf(&b,
		`  <text x="%d" y="%d" text-anchor="middle" fill="rgba(255,255,255,0.3)" font-size="11" font-family="sans-serif" letter-spacing="2">%s</text>`+"\n",
		CanvasSize/2, CanvasSize-8, escapeText(strings.ToUpper(city)))

	b.WriteString("</svg>\n")
	return b.String()
}

// escapeText escapes a string for embedding in SVG text content.
func escapeText(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}

// Filename derives a download filename from a city name: every character
// outside [a-z0-9] becomes an underscore.
func Filename(city string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(city) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_roads.svg"
}
