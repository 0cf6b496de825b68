package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"incomedash/internal/chart"
	"incomedash/internal/chartspec"
	"incomedash/internal/dash"
	"incomedash/internal/state"
	"incomedash/internal/svg"
)

const (
	svgType  = "image/svg+xml"
	htmlType = "text/html; charset=utf-8"
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 20px; }
nav a { margin-right: 1em; }
.panes { display: flex; gap: 20px; align-items: flex-start; }
#status { color: #666; }
</style>
</head>
<body>
<nav><a href="/map">Map</a><a href="/ranking">Ranking</a><a href="/widget">Widget</a><a href="/charts/">Charts</a></nav>
<h1>{{.Title}}</h1>
{{if .Status}}<p id="status">{{.Status}}</p>{{end}}
{{.Body}}
</body>
</html>
`))

var mapBody = template.Must(template.New("map").Parse(`<div class="panes">
<div id="map">{{.Map}}</div>
<div id="detail">{{.Detail}}</div>
</div>
<script>
(function () {
  var current = "";
  var detail = document.getElementById("detail");
  document.querySelectorAll("#map .mark").forEach(function (g) {
    g.addEventListener("mouseover", function () {
      var key = g.getAttribute("data-key");
      if (!key || key === current) return;
      current = key;
      fetch("/detail/" + encodeURIComponent(key) + ".svg")
        .then(function (r) { return r.text(); })
        .then(function (t) { if (key === current) detail.innerHTML = t; })
        .catch(function () {});
    });
  });
})();
</script>
`))

var listBody = template.Must(template.New("list").Parse(`{{if .}}<ul>
{{range .}}<li><a href="/charts/{{.}}">{{.}}</a></li>
{{end}}</ul>{{else}}<p>No charts.</p>{{end}}
`))

type page struct {
	Title  string
	Status string
	Body   template.HTML
}

func (s *Server) writePage(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", htmlType)
	if err := layout.Execute(w, p); err != nil {
		s.l.Error("write page", slog.String("title", p.Title), slog.Any("err", err))
	}
}

func (s *Server) writeSVG(w http.ResponseWriter, sc chart.Scene) {
	w.Header().Set("Content-Type", svgType)
	if err := svg.Write(w, sc); err != nil {
		s.l.Error("write svg", slog.Any("err", err))
	}
}

// inline embeds a scene into a page. The SVG writer escapes every text node.
func inline(sc chart.Scene) template.HTML {
	return template.HTML(svg.Render(sc))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.writePage(w, page{
		Title: "Income Dashboard",
		Body:  template.HTML(`<ul><li><a href="/map">Mean income by state</a></li><li><a href="/ranking">Top cities and states</a></li><li><a href="/widget">House prices and purchasing power</a></li><li><a href="/charts/">Charts</a></li></ul>`),
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	md, err := s.mapData(r.Context())
	if err != nil {
		s.writePage(w, page{Title: "Mean Income by State", Status: dash.Loading})
		return
	}
	sc, err := s.d.MapScene(md)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var body struct{ Map, Detail template.HTML }
	body.Map = inline(sc)
	body.Detail = inline(s.d.DetailScene(md, state.Selection{}))

	var buf bytes.Buffer
	if err := mapBody.Execute(&buf, body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, page{Title: "Mean Income by State", Status: md.Status(), Body: template.HTML(buf.String())})
}

func (s *Server) handleMapSVG(w http.ResponseWriter, r *http.Request) {
	md, err := s.mapData(r.Context())
	if err != nil {
		http.Error(w, dash.Loading, http.StatusServiceUnavailable)
		return
	}
	sc, err := s.d.MapScene(md)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeSVG(w, sc)
}

func (s *Server) handleDetailSVG(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "state")
	if n, err := url.PathUnescape(name); err == nil {
		name = n
	}
	md, err := s.mapData(r.Context())
	if err != nil {
		http.Error(w, dash.Loading, http.StatusServiceUnavailable)
		return
	}
	sel, _ := state.Selection{}.Select(name)
	s.writeSVG(w, s.d.DetailScene(md, sel))
}

func (s *Server) rankingScenes(r *http.Request) (cities, states chart.Scene, err error) {
	ci, err := s.cityIncome(r.Context())
	if err != nil {
		return chart.Scene{}, chart.Scene{}, err
	}
	return s.d.RankingScenes(ci)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	cities, states, err := s.rankingScenes(r)
	if err != nil {
		s.writePage(w, page{Title: "Income Ranking", Status: dash.Loading})
		return
	}
	body := `<div class="panes">` + string(inline(cities)) + string(inline(states)) + `</div>`
	s.writePage(w, page{Title: "Income Ranking", Body: template.HTML(body)})
}

func (s *Server) handleRankingSVG(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != "cities" && kind != "states" {
		http.NotFound(w, r)
		return
	}
	cities, states, err := s.rankingScenes(r)
	if err != nil {
		http.Error(w, dash.Loading, http.StatusServiceUnavailable)
		return
	}
	if kind == "cities" {
		s.writeSVG(w, cities)
		return
	}
	s.writeSVG(w, states)
}

func (s *Server) handleWidget(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", htmlType)
	if err := s.d.Widget().WritePage(w); err != nil {
		s.l.Error("write widget", slog.Any("err", err))
	}
}

func (s *Server) handleCharts(w http.ResponseWriter, _ *http.Request) {
	paths, err := chartspec.List(s.d.ChartSpecDir())
	if err != nil {
		s.l.Error("list charts", slog.Any("err", err))
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, chartspec.NameOf(p))
	}
	var buf bytes.Buffer
	if err := listBody.Execute(&buf, names); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, page{Title: "Charts", Body: template.HTML(buf.String())})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	spec, err := chartspec.Find(s.d.ChartSpecDir(), chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, chartspec.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", htmlType)
	if err := s.specs.Render(w, spec); err != nil {
		s.l.Error("render chart", slog.String("name", spec.Name), slog.Any("err", err))
	}
}
