package chartspec

import (
	"encoding/json"
	"html/template"
	"io"
)

// Placeholder is shown while no spec is available.
const Placeholder = "Loading chart..."

// DefaultPlotlyScript is the plotting library loaded by rendered pages.
const DefaultPlotlyScript = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// Renderer draws a spec. A nil spec means not loaded yet.
type Renderer interface {
	Render(w io.Writer, s *Spec) error
}

// PlotlyRenderer emits an HTML page that replays the spec with plotly.js.
type PlotlyRenderer struct {
	ScriptURL string
}

var page = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .Spec}}<script src="{{.Script}}"></script>{{end}}
</head>
<body>
{{if .Spec}}<div id="chart"></div>
<script>
Plotly.newPlot("chart", {{.Spec.Data}}, {{.Spec.Layout}}, {{.Spec.Config}});
</script>
{{else}}<p>{{.Placeholder}}</p>
{{end}}</body>
</html>
`))

type pageData struct {
	Title       string
	Script      string
	Placeholder string
	Spec        *parts
}

type parts struct {
	Data, Layout, Config json.RawMessage
}

func orDefault(raw json.RawMessage, def string) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(def)
	}
	return raw
}

func (r PlotlyRenderer) Render(w io.Writer, s *Spec) error {
	d := pageData{Title: "Chart", Script: r.ScriptURL, Placeholder: Placeholder}
	if d.Script == "" {
		d.Script = DefaultPlotlyScript
	}
	if s != nil {
		d.Title = s.Name
		d.Spec = &parts{
			Data:   orDefault(s.Data, "[]"),
			Layout: orDefault(s.Layout, "{}"),
			Config: orDefault(s.Config, "{}"),
		}
	}
	return page.Execute(w, d)
}
