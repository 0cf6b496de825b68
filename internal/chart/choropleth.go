package chart

import (
	"incomedash/internal/data"
	"incomedash/internal/geom"
	"incomedash/internal/scale"
)

// MapOptions configures the state choropleth.
type MapOptions struct {
	Width, Height float64
	Margin        Margin
	Title         string
	Fallback      string // fill for regions without a joined record
	Stroke        string
	StrokeWidth   float64
	Hover         Style
	LegendTitle   string
	LegendWidth   float64
	LegendHeight  float64
	LegendTicks   int
}

func DefaultMapOptions() MapOptions {
	return MapOptions{
		Width: 700, Height: 500,
		Margin:       Margin{Top: 40, Right: 40, Bottom: 40, Left: 40},
		Title:        "Mean Income by State",
		Fallback:     "#cccccc",
		Stroke:       "#ffffff",
		StrokeWidth:  0.5,
		Hover:        Style{Stroke: "#000000", StrokeWidth: 1.5},
		LegendTitle:  "Mean Income ($)",
		LegendWidth:  300,
		LegendHeight: 15,
		LegendTicks:  5,
	}
}

// Choropleth projects the regions into the drawing area and fills each by
// its joined state's mean. The join is exact name equality; regions that
// miss it use o.Fallback and are listed in Scene.Unmatched.
func Choropleth(regions []geom.Region, states []data.StateIncome, o MapOptions) (Scene, error) {
	records := make([]data.Record, len(states))
	for i, st := range states {
		records[i] = st.Record
	}
	color, err := scale.SequentialFor(records)
	if err != nil {
		return Scene{}, err
	}
	byName := data.Index(states)

	m := o.Margin
	proj := geom.NewAlbersUSA().FitSize(o.Width-m.Left-m.Right, o.Height-m.Top-m.Bottom, regions)
	proj.Translate[0] += m.Left
	proj.Translate[1] += m.Top

	s := Scene{Width: o.Width, Height: o.Height, Title: o.Title}
	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		key := r.Name
		if key == "" {
			key = r.ID
		}
		if seen[key] {
			continue
		}
		shape := proj.ProjectRegion(r)
		if len(shape.Polygons) == 0 {
			continue
		}
		seen[key] = true
		mk := Mark{
			Key:   key,
			Name:  r.Name,
			Kind:  Region,
			Shape: shape,
			Style: Style{Fill: o.Fallback, Stroke: o.Stroke, StrokeWidth: o.StrokeWidth},
			Hover: o.Hover,
			Label: r.Name + ": no data",
		}
		if st, ok := byName[r.Name]; ok {
			mk.Value = st.Mean
			mk.Fill = color.Color(st.Mean)
			mk.Label = r.Name + ": " + scale.FormatMoney(st.Mean)
		} else {
			s.Unmatched = append(s.Unmatched, key)
		}
		s.Marks = append(s.Marks, mk)
	}

	s.Texts = append(s.Texts, Text{X: o.Width / 2, Y: m.Top / 2, Value: o.Title, Size: 20, Bold: true})
	s.Legend = legend(color, o)
	return s, nil
}

func legend(color scale.Sequential, o MapOptions) *Legend {
	l := &Legend{
		X:     o.Width - o.Margin.Right - o.LegendWidth,
		Y:     o.Height - o.Margin.Bottom,
		W:     o.LegendWidth,
		H:     o.LegendHeight,
		Title: o.LegendTitle,
	}
	const n = 8
	for i := 0; i <= n; i++ {
		t := float64(i) / n
		l.Stops = append(l.Stops, Stop{Offset: t, Color: scale.Blues(t).Hex()})
	}
	lin := scale.NewLinear(color.Lo, color.Hi, 0, o.LegendWidth)
	for _, v := range lin.Ticks(o.LegendTicks) {
		l.Ticks = append(l.Ticks, Tick{Pos: lin.Map(v), Label: scale.FormatMoney(v)})
	}
	return l
}
