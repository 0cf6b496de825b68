package chart

import (
	"fmt"
	"math"
	"time"

	"incomedash/internal/data"
	"incomedash/internal/scale"
)

// BarOptions configures a ranked bar view.
type BarOptions struct {
	Width, Height float64
	Margin        Margin
	Title         string
	Color         string
	TopN          int // 0 keeps every record
	PaddingFactor float64
	BandPadding   float64
	Stagger       time.Duration
	Duration      time.Duration
	YLabel        string
	YTicks        int
	MoneyTicks    bool // format value ticks as dollars
	Radius        float64
	Hover         Style
	ValueLabels   bool // always show value labels, fading in after LabelDelay
	LabelDelay    time.Duration
	DashedGrid    bool
	XLabelSize    float64
}

// RankingOptions are the top-N city/state panels.
func RankingOptions(title, color string) BarOptions {
	return BarOptions{
		Width: 550, Height: 450,
		Margin:        Margin{Top: 50, Right: 30, Bottom: 100, Left: 80},
		Title:         title,
		Color:         color,
		TopN:          10,
		PaddingFactor: 1.1,
		BandPadding:   0.2,
		Stagger:       100 * time.Millisecond,
		Duration:      time.Second,
		YLabel:        "Mean Value",
		YTicks:        10,
		Radius:        4,
		Hover:         Style{Fill: scale.Darker(color, 0.7), Stroke: "#333", StrokeWidth: 2},
		DashedGrid:    true,
		XLabelSize:    12,
	}
}

// DetailOptions is the per-state city breakdown beside the map.
func DetailOptions(color string) BarOptions {
	return BarOptions{
		Width: 320, Height: 500,
		Margin:        Margin{Top: 70, Right: 20, Bottom: 100, Left: 70},
		Color:         color,
		PaddingFactor: 1.1,
		BandPadding:   0.2,
		Stagger:       100 * time.Millisecond,
		Duration:      800 * time.Millisecond,
		YLabel:        "Mean Income",
		YTicks:        5,
		MoneyTicks:    true,
		Hover:         Style{Fill: scale.Darker(color, 0.7)},
		ValueLabels:   true,
		LabelDelay:    300 * time.Millisecond,
		XLabelSize:    10,
	}
}

// RankingChart draws the records largest first, truncated to o.TopN.
// An empty list yields scale.ErrEmptyDomain and no scene.
func RankingChart(records []data.Record, o BarOptions) (Scene, error) {
	n := len(records)
	if o.TopN > 0 {
		n = o.TopN
	}
	records = data.TopN(records, n)
	s, err := bars(records, o)
	if err != nil {
		return Scene{}, err
	}
	s.Title = o.Title
	s.Texts = append(s.Texts, Text{X: o.Width / 2, Y: 25, Value: o.Title, Size: 18, Bold: true})
	return s, nil
}

// DetailChart draws the cities of one state, ranked. A state without city
// records gets an explicit empty-state scene instead of nothing.
func DetailChart(st data.StateIncome, o BarOptions) Scene {
	s, err := bars(data.TopN(st.Cities, len(st.Cities)), o)
	if err != nil {
		s = Scene{Width: o.Width, Height: o.Height, Empty: fmt.Sprintf("No city data for %s", st.Name)}
		s.Texts = append(s.Texts, Text{X: o.Width / 2, Y: o.Height / 2, Value: s.Empty, Size: 14})
	}
	s.Title = st.Name
	s.Subtitle = "State Mean Income: " + scale.FormatMoney(st.Mean)
	s.Texts = append(s.Texts,
		Text{X: o.Width / 2, Y: 25, Value: s.Title, Size: 16, Bold: true},
		Text{X: o.Width / 2, Y: 50, Value: s.Subtitle, Size: 14},
	)
	return s
}

// Placeholder is shown in the detail pane before anything is selected.
func Placeholder(o BarOptions) Scene {
	const msg = "Hover over a state to view city income data"
	return Scene{
		Width: o.Width, Height: o.Height, Empty: msg,
		Texts: []Text{{X: o.Width / 2, Y: o.Height / 2, Value: msg, Size: 14}},
	}
}

func bars(records []data.Record, o BarOptions) (Scene, error) {
	m := o.Margin
	x0, x1 := m.Left, o.Width-m.Right
	y0, y1 := o.Height-m.Bottom, m.Top
	y, err := scale.ForMeasure(records, o.PaddingFactor, y0, y1)
	if err != nil {
		return Scene{}, err
	}
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key()
	}
	x := scale.NewBand(keys, x0, x1, o.BandPadding)

	s := Scene{Width: o.Width, Height: o.Height}
	seen := make(map[string]bool, len(records))
	xt := make([]Tick, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		px, _ := x.Position(k)
		// negative means sit on the baseline
		top := math.Min(y.Map(r.Mean), y0)
		mk := Mark{
			Key:      k,
			Name:     r.Name,
			Value:    r.Mean,
			Kind:     Bar,
			Rect:     Rect{X: px, Y: top, W: x.Bandwidth(), H: y0 - top},
			Baseline: y0,
			Radius:   o.Radius,
			Style:    Style{Fill: o.Color},
			Hover:    o.Hover,
			Delay:    time.Duration(len(s.Marks)) * o.Stagger,
			Duration: o.Duration,
		}
		if o.ValueLabels {
			mk.Label = scale.FormatMoney(r.Mean)
			mk.LabelAlways = true
			mk.LabelDelay = mk.Delay + o.LabelDelay
		} else {
			mk.Label = scale.FormatMoneyCents(r.Mean)
		}
		s.Marks = append(s.Marks, mk)
		xt = append(xt, Tick{Pos: px + x.Bandwidth()/2, Label: r.Name})
	}

	yt := y.Ticks(o.YTicks)
	ticks := make([]Tick, len(yt))
	for i, v := range yt {
		label := scale.FormatNumber(v)
		if o.MoneyTicks {
			label = scale.FormatMoney(v)
		}
		ticks[i] = Tick{Pos: y.Map(v), Label: label}
		g := GridLine{X1: x0, Y1: ticks[i].Pos, X2: x1, Y2: ticks[i].Pos, Color: "#e0e0e0", Dashed: o.DashedGrid}
		s.Grid = append(s.Grid, g)
	}
	s.Axes = []Axis{
		{Orient: Bottom, X: x0, Y: y0, Start: x0, End: x1, Ticks: xt, Domain: true, LabelRotate: -45, FontSize: o.XLabelSize},
		{Orient: Left, X: x0, Y: y0, Start: y0, End: y1, Ticks: ticks, Domain: !o.MoneyTicks, FontSize: 12},
	}
	s.Texts = append(s.Texts, Text{X: m.Left / 3, Y: o.Height / 2, Value: o.YLabel, Size: 14, Rotate: -90})
	return s, nil
}
