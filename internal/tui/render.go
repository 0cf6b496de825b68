package tui

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"incomedash/internal/chart"
	"incomedash/internal/geom"
)

// canvas rasterizes a scene: shapes go to a braille layer, axes and text to
// an overlay drawn on top of it.
type canvas struct {
	w, h int
	k    float64 // micro pixels per scene unit
	br   *brailleBuf
	over [][]rune
	ofg  [][]string
}

// fitScale is the uniform scale that fits a scene into w×h cells.
func fitScale(s chart.Scene, w, h int) float64 {
	if s.Width <= 0 || s.Height <= 0 || w <= 0 || h <= 0 {
		return 0
	}
	return math.Min(float64(2*w)/s.Width, float64(4*h)/s.Height)
}

// toScene maps a cell to the scene point under its center.
func toScene(s chart.Scene, w, h, cx, cy int) (float64, float64, bool) {
	k := fitScale(s, w, h)
	if k == 0 || cx < 0 || cy < 0 || cx >= w || cy >= h {
		return 0, 0, false
	}
	return (float64(cx)*2 + 1) / k, (float64(cy)*4 + 2) / k, true
}

// hitCell returns the key of the mark drawn under a cell.
func hitCell(s chart.Scene, w, h, cx, cy int) (string, bool) {
	x, y, ok := toScene(s, w, h, cx, cy)
	if !ok {
		return "", false
	}
	return s.HitTest(x, y)
}

func newCanvas(w, h int, k float64) *canvas {
	over := make([][]rune, h)
	ofg := make([][]string, h)
	for i := range over {
		over[i] = make([]rune, w)
		ofg[i] = make([]string, w)
	}
	return &canvas{w: w, h: h, k: k, br: newBrailleBuf(w, h), over: over, ofg: ofg}
}

func (c *canvas) put(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.over[y][x] = r
	c.ofg[y][x] = color
}

// text writes s on row y, anchored at column x.
func (c *canvas) text(x, y int, s string, a chart.Anchor, color string) (start, end int) {
	n := utf8.RuneCountInString(s)
	switch a {
	case chart.Middle:
		x -= n / 2
	case chart.End:
		x -= n
	}
	// keep the text on the canvas when it fits
	x = max(0, min(x, c.w-n))
	i := 0
	for _, r := range s {
		c.put(x+i, y, r, color)
		i++
	}
	return x, x + n
}

func (c *canvas) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x * c.k / 2)), int(math.Floor(y * c.k / 4))
}

func (c *canvas) fillRect(r chart.Rect, color string) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	x0, x1 := int(math.Floor(r.X*c.k)), int(math.Ceil((r.X+r.W)*c.k))
	y0, y1 := int(math.Floor(r.Y*c.k)), int(math.Ceil((r.Y+r.H)*c.k))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.br.setPixel(x, y, color)
		}
	}
}

// fillRegion scan-converts every ring of a region with the even-odd rule,
// sampling micro-pixel centers. A region too small to cover any center still
// gets one dot.
func (c *canvas) fillRegion(reg geom.Region, color string) {
	var rings []geom.Ring
	bb := geom.EmptyBBox()
	for _, p := range reg.Polygons {
		for _, ring := range p {
			rings = append(rings, ring)
			for _, pt := range ring {
				bb = bb.Extend(pt)
			}
		}
	}
	if !bb.Valid() {
		return
	}
	painted := false
	var xs []float64
	for my := int(math.Floor(bb.MinY * c.k)); my < int(math.Ceil(bb.MaxY*c.k)); my++ {
		sy := (float64(my) + 0.5) / c.k
		xs = xs[:0]
		for _, ring := range rings {
			for i := 0; i+1 < len(ring); i++ {
				a, b := ring[i], ring[i+1]
				if (a[1] <= sy && sy < b[1]) || (b[1] <= sy && sy < a[1]) {
					xs = append(xs, a[0]+(sy-a[1])/(b[1]-a[1])*(b[0]-a[0]))
				}
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for mx := int(math.Ceil(xs[i]*c.k - 0.5)); float64(mx)+0.5 <= xs[i+1]*c.k; mx++ {
				c.br.setPixel(mx, my, color)
				painted = true
			}
		}
	}
	if !painted {
		c.br.setPixel(int((bb.MinX+bb.MaxX)/2*c.k), int((bb.MinY+bb.MaxY)/2*c.k), color)
	}
}

func (c *canvas) strokeRegion(reg geom.Region, color string) {
	for _, p := range reg.Polygons {
		for _, ring := range p {
			for i := 0; i+1 < len(ring); i++ {
				a, b := ring[i], ring[i+1]
				c.br.drawLineMicro(int(a[0]*c.k), int(a[1]*c.k), int(b[0]*c.k), int(b[1]*c.k), color)
			}
		}
	}
}

func (c *canvas) axis(a chart.Axis) {
	switch a.Orient {
	case chart.Bottom:
		row := int(math.Ceil(a.Y * c.k / 4))
		x0, _ := c.cellOf(a.Start, a.Y)
		x1, _ := c.cellOf(a.End, a.Y)
		if a.Domain {
			c.drawLine(x0, row, x1, row, dimHex)
		}
		room := c.w
		if len(a.Ticks) > 1 {
			room = max(1, int((a.Ticks[1].Pos-a.Ticks[0].Pos)*c.k/2)-1)
		}
		for _, t := range a.Ticks {
			x, _ := c.cellOf(t.Pos, a.Y)
			c.text(x, row+1, truncate(t.Label, room), chart.Middle, textHex)
		}
	case chart.Left:
		col, _ := c.cellOf(a.X, 0)
		col--
		_, y0 := c.cellOf(a.X, a.Start)
		_, y1 := c.cellOf(a.X, a.End)
		if a.Domain {
			c.drawLine(col, y0, col, y1, dimHex)
		}
		last := -1
		for _, t := range a.Ticks {
			_, y := c.cellOf(a.X, t.Pos)
			if y == last {
				continue
			}
			last = y
			c.text(col, y, t.Label, chart.End, textHex)
		}
	}
}

func (c *canvas) legend(l *chart.Legend) {
	x0, row := c.cellOf(l.X, l.Y)
	x1, _ := c.cellOf(l.X+l.W, l.Y)
	for x := x0; x < x1; x++ {
		t := (float64(x-x0) + 0.5) / float64(max(1, x1-x0))
		c.put(x, row, '█', stopColor(l.Stops, t))
	}
	lastEnd := math.MinInt
	for _, t := range l.Ticks {
		x, _ := c.cellOf(l.X+t.Pos, l.Y)
		n := utf8.RuneCountInString(t.Label)
		if x-n/2 <= lastEnd {
			continue
		}
		_, lastEnd = c.text(x, row+1, t.Label, chart.Middle, textHex)
	}
	if l.Title != "" {
		c.text((x0+x1)/2, row-1, l.Title, chart.Middle, textHex)
	}
}

// stopColor picks the gradient stop nearest to t.
func stopColor(stops []chart.Stop, t float64) string {
	best, bd := "", math.Inf(1)
	for _, s := range stops {
		if d := math.Abs(s.Offset - t); d < bd {
			best, bd = s.Color, d
		}
	}
	return best
}

// renderScene draws s into w×h cells. hover names the mark under the pointer;
// it is painted with its hover style and shows its label.
func renderScene(s chart.Scene, hover string, w, h int) string {
	c := newCanvas(w, h, fitScale(s, w, h))
	if c.k == 0 {
		return c.String()
	}
	var hovered *chart.Mark
	for i, m := range s.Marks {
		hot := m.Key != "" && m.Key == hover
		if hot {
			hovered = &s.Marks[i]
		}
		fill := m.Paint(hot).Fill
		switch m.Kind {
		case chart.Region:
			c.fillRegion(m.Shape, fill)
		default:
			c.fillRect(m.Rect, fill)
		}
	}
	if hovered != nil && hovered.Kind == chart.Region {
		c.strokeRegion(hovered.Shape, hoverHex)
	}
	for _, a := range s.Axes {
		c.axis(a)
	}
	if s.Legend != nil {
		c.legend(s.Legend)
	}
	for _, m := range s.Marks {
		if m.Kind != chart.Bar || m.Label == "" || (!m.LabelAlways && m.Key != hover) {
			continue
		}
		x, y := c.cellOf(m.Rect.X+m.Rect.W/2, m.Rect.Y)
		c.text(x, y-1, m.Label, chart.Middle, textHex)
	}
	for _, t := range s.Texts {
		x, y := c.cellOf(t.X, t.Y)
		if math.Abs(t.Rotate) == 90 {
			n := utf8.RuneCountInString(t.Value)
			i := 0
			for _, r := range t.Value {
				c.put(x, y-n/2+i, r, textHex)
				i++
			}
			continue
		}
		c.text(x, y, t.Value, t.Anchor, textHex)
	}
	return c.String()
}

func (c *canvas) String() string {
	styles := map[string]lipgloss.Style{}
	paint := func(b *strings.Builder, run []rune, color string) {
		if len(run) == 0 {
			return
		}
		if color == "" {
			b.WriteString(string(run))
			return
		}
		st, ok := styles[color]
		if !ok {
			st = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			styles[color] = st
		}
		b.WriteString(st.Render(string(run)))
	}

	lines := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var b strings.Builder
		var run []rune
		cur := ""
		for x := 0; x < c.w; x++ {
			r, color := c.over[y][x], c.ofg[y][x]
			if r == 0 {
				r, color = c.br.cell(x, y)
			}
			if r == ' ' {
				color = ""
			}
			if color != cur {
				paint(&b, run, cur)
				run, cur = run[:0], color
			}
			run = append(run, r)
		}
		paint(&b, run, cur)
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
