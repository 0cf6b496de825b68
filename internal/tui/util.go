package tui

import "unicode/utf8"

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}

// drawLine draws a line between two cells into the overlay using box glyphs.
func (c *canvas) drawLine(x0, y0, x1, y1 int, color string) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	c.put(x0, y0, '•', color)
	for x0 != x1 || y0 != y1 {
		e2 := 2 * err
		movedX, movedY := false, false
		if e2 >= dy {
			err += dy
			x0 += sx
			movedX = true
		}
		if e2 <= dx {
			err += dx
			y0 += sy
			movedY = true
		}
		glyph := '•'
		switch {
		case movedX && movedY:
			if (sx > 0 && sy > 0) || (sx < 0 && sy < 0) {
				glyph = '╲'
			} else {
				glyph = '╱'
			}
		case movedX:
			glyph = '─'
		case movedY:
			glyph = '│'
		}
		c.put(x0, y0, glyph, color)
	}
}
