// Package svg serializes chart scenes as standalone SVG documents. Bars
// reveal with SMIL animations staggered by each mark's delay and hover
// styling is plain CSS, so the output needs no script.
package svg

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"incomedash/internal/chart"
	"incomedash/internal/geom"
)

const fontFamily = "Helvetica, Arial, sans-serif"

// Write renders s to w.
func Write(w io.Writer, s chart.Scene) error {
	_, err := io.WriteString(w, Render(s))
	return err
}

// Render returns s as an SVG document.
func Render(s chart.Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" font-family="%s">`+"\n",
		num(s.Width), num(s.Height), num(s.Width), num(s.Height), fontFamily)
	prefix := "m"
	if s.ID != "" {
		prefix = s.ID + "-m"
	}
	writeStyle(&b, prefix, s)
	if s.Legend != nil {
		writeGradient(&b, s.Legend)
	}
	for _, g := range s.Grid {
		dash := ""
		if g.Dashed {
			dash = ` stroke-dasharray="3,3"`
		}
		fmt.Fprintf(&b, `<line class="grid" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-opacity="0.5"%s/>`+"\n",
			num(g.X1), num(g.Y1), num(g.X2), num(g.Y2), escapeXML(g.Color), dash)
	}
	for i, m := range s.Marks {
		switch m.Kind {
		case chart.Region:
			writeRegion(&b, prefix, i, m)
		default:
			writeBar(&b, prefix, i, m)
		}
	}
	for _, a := range s.Axes {
		writeAxis(&b, a)
	}
	if s.Legend != nil {
		writeLegend(&b, s.Legend)
	}
	for _, t := range s.Texts {
		writeText(&b, t, "")
	}
	b.WriteString("</svg>\n")
	return b.String()
}

func writeStyle(b *strings.Builder, prefix string, s chart.Scene) {
	b.WriteString("<style>\n")
	b.WriteString(".mark .tip { visibility: hidden; pointer-events: none; }\n")
	b.WriteString(".mark:hover .tip { visibility: visible; }\n")
	for i, m := range s.Marks {
		h := m.Paint(true)
		fmt.Fprintf(b, "#%s%d:hover .shape { fill: %s;", prefix, i, h.Fill)
		if h.Stroke != "" {
			fmt.Fprintf(b, " stroke: %s; stroke-width: %s;", h.Stroke, num(h.StrokeWidth))
		}
		b.WriteString(" }\n")
	}
	b.WriteString("</style>\n")
}

func writeGradient(b *strings.Builder, l *chart.Legend) {
	b.WriteString(`<defs><linearGradient id="legend-gradient">`)
	for _, st := range l.Stops {
		fmt.Fprintf(b, `<stop offset="%s%%" stop-color="%s"/>`, num(st.Offset*100), escapeXML(st.Color))
	}
	b.WriteString("</linearGradient></defs>\n")
}

func writeBar(b *strings.Builder, prefix string, i int, m chart.Mark) {
	fmt.Fprintf(b, `<g id="%s%d" class="mark bar" data-key="%s">`, prefix, i, escapeXML(m.Key))
	fill := m.Fill
	stroke := ""
	if m.Stroke != "" {
		stroke = fmt.Sprintf(` stroke="%s" stroke-width="%s"`, escapeXML(m.Stroke), num(m.StrokeWidth))
	}
	radius := ""
	if m.Radius > 0 {
		radius = fmt.Sprintf(` rx="%s" ry="%s"`, num(m.Radius), num(m.Radius))
	}
	fmt.Fprintf(b, `<rect class="shape" x="%s" y="%s" width="%s" height="0" fill="%s"%s%s>`,
		num(m.Rect.X), num(m.Baseline), num(m.Rect.W), escapeXML(fill), stroke, radius)
	writeAnimate(b, "y", m.Baseline, m.Rect.Y, m.Delay, m.Duration)
	writeAnimate(b, "height", 0, m.Rect.H, m.Delay, m.Duration)
	fmt.Fprintf(b, "<title>%s</title></rect>", escapeXML(m.Name))

	if m.Label != "" {
		cx := m.Rect.X + m.Rect.W/2
		if m.LabelAlways {
			fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" font-size="10" font-weight="bold" opacity="0">`, num(cx), num(m.Baseline))
			writeAnimate(b, "y", m.Baseline, m.Rect.Y-5, m.LabelDelay, m.Duration)
			writeAnimate(b, "opacity", 0, 1, m.LabelDelay, m.Duration)
			fmt.Fprintf(b, "%s</text>", escapeXML(m.Label))
		} else {
			fmt.Fprintf(b, `<text class="tip" x="%s" y="%s" text-anchor="middle" font-size="14" font-weight="bold" fill="#333">%s</text>`,
				num(cx), num(m.Rect.Y-10), escapeXML(m.Label))
		}
	}
	b.WriteString("</g>\n")
}

func writeAnimate(b *strings.Builder, attr string, from, to float64, delay, dur time.Duration) {
	if dur <= 0 {
		dur = time.Millisecond
	}
	fmt.Fprintf(b, `<animate attributeName="%s" from="%s" to="%s" begin="%dms" dur="%dms" fill="freeze" calcMode="spline" keyTimes="0;1" keySplines="0.645 0.045 0.355 1"/>`,
		attr, num(from), num(to), delay.Milliseconds(), dur.Milliseconds())
}

func writeRegion(b *strings.Builder, prefix string, i int, m chart.Mark) {
	fmt.Fprintf(b, `<g id="%s%d" class="mark region" data-key="%s">`, prefix, i, escapeXML(m.Key))
	fmt.Fprintf(b, `<path class="shape" d="%s" fill="%s" fill-rule="evenodd" stroke="%s" stroke-width="%s">`,
		pathData(m.Shape), escapeXML(m.Fill), escapeXML(m.Stroke), num(m.StrokeWidth))
	fmt.Fprintf(b, "<title>%s</title></path></g>\n", escapeXML(m.Label))
}

func pathData(r geom.Region) string {
	var b strings.Builder
	for _, p := range r.Polygons {
		for _, ring := range p {
			for i, pt := range ring {
				if i == 0 {
					b.WriteByte('M')
				} else {
					b.WriteByte('L')
				}
				b.WriteString(num(pt[0]))
				b.WriteByte(',')
				b.WriteString(num(pt[1]))
			}
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func writeAxis(b *strings.Builder, a chart.Axis) {
	size := a.FontSize
	if size == 0 {
		size = 10
	}
	b.WriteString(`<g class="axis" fill="none" font-size="` + num(size) + `">`)
	switch a.Orient {
	case chart.Bottom:
		if a.Domain {
			fmt.Fprintf(b, `<path stroke="currentColor" d="M%s,%sH%s"/>`, num(a.Start), num(a.Y), num(a.End))
		}
		for _, t := range a.Ticks {
			fmt.Fprintf(b, `<line stroke="currentColor" x1="%s" y1="%s" x2="%s" y2="%s"/>`, num(t.Pos), num(a.Y), num(t.Pos), num(a.Y+6))
			writeText(b, chart.Text{X: t.Pos, Y: a.Y + 9, Value: t.Label, Anchor: chart.End, Size: size, Rotate: a.LabelRotate}, `fill="currentColor" dy="0.71em"`)
		}
	case chart.Left:
		if a.Domain {
			fmt.Fprintf(b, `<path stroke="currentColor" d="M%s,%sV%s"/>`, num(a.X), num(a.Start), num(a.End))
		}
		for _, t := range a.Ticks {
			fmt.Fprintf(b, `<line stroke="currentColor" x1="%s" y1="%s" x2="%s" y2="%s"/>`, num(a.X-6), num(t.Pos), num(a.X), num(t.Pos))
			writeText(b, chart.Text{X: a.X - 9, Y: t.Pos, Value: t.Label, Anchor: chart.End, Size: size}, `fill="currentColor" dy="0.32em"`)
		}
	}
	b.WriteString("</g>\n")
}

func writeLegend(b *strings.Builder, l *chart.Legend) {
	fmt.Fprintf(b, `<g class="legend"><rect x="%s" y="%s" width="%s" height="%s" fill="url(#legend-gradient)"/>`,
		num(l.X), num(l.Y), num(l.W), num(l.H))
	ty := l.Y + l.H
	for _, t := range l.Ticks {
		x := l.X + t.Pos
		fmt.Fprintf(b, `<line stroke="currentColor" x1="%s" y1="%s" x2="%s" y2="%s"/>`, num(x), num(ty), num(x), num(ty+6))
		writeText(b, chart.Text{X: x, Y: ty + 9, Value: t.Label, Size: 10}, `dy="0.71em"`)
	}
	if l.Title != "" {
		writeText(b, chart.Text{X: l.X + l.W/2, Y: l.Y - 10, Value: l.Title, Size: 12}, "")
	}
	b.WriteString("</g>\n")
}

func writeText(b *strings.Builder, t chart.Text, extra string) {
	anchor := "middle"
	switch t.Anchor {
	case chart.Start:
		anchor = "start"
	case chart.End:
		anchor = "end"
	}
	fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="%s"`, num(t.X), num(t.Y), anchor)
	if t.Size > 0 {
		fmt.Fprintf(b, ` font-size="%s"`, num(t.Size))
	}
	if t.Bold {
		b.WriteString(` font-weight="bold"`)
	}
	if t.Rotate != 0 {
		fmt.Fprintf(b, ` transform="rotate(%s %s %s)"`, num(t.Rotate), num(t.X), num(t.Y))
	}
	if extra != "" {
		b.WriteString(" " + extra)
	}
	fmt.Fprintf(b, ">%s</text>\n", escapeXML(t.Value))
}

// num prints coordinates with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
