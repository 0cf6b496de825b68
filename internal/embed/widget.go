// Package embed renders the externally hosted visualization widget and
// mounts it on a loopback page for the lifetime of the view that shows it.
package embed

import (
	"bytes"
	"html/template"
	"io"
	"net/url"
)

// Widget describes a hosted interactive visualization. Field order matches
// config.Widget so one converts to the other directly.
type Widget struct {
	ID          string
	Name        string
	Title       string
	HostURL     string
	StaticImage string
	ScriptURL   string
	AspectRatio float64
}

var fragment = template.Must(template.New("widget").Parse(`<div class="tableauPlaceholder" id="{{.ID}}" style="position: relative">
<noscript><a href="#"><img alt="{{.Title}}" src="{{.StaticImage}}" style="border: none"></a></noscript>
<object class="tableauViz" style="display:none;">
<param name="host_url" value="{{.HostParam}}">
<param name="embed_code_version" value="3">
<param name="site_root" value="">
<param name="name" value="{{.Name}}">
<param name="tabs" value="no">
<param name="toolbar" value="yes">
<param name="static_image" value="{{.StaticImage}}">
<param name="animate_transition" value="yes">
<param name="display_static_image" value="yes">
<param name="display_spinner" value="yes">
<param name="display_overlay" value="yes">
<param name="display_count" value="yes">
<param name="language" value="en-US">
</object>
</div>
<script>
(function () {
  var div = document.getElementById({{.ID}});
  if (!div) return;
  var viz = div.getElementsByTagName("object")[0];
  if (!viz) return;
  viz.style.width = "100%";
  viz.style.height = (div.offsetWidth * {{.AspectRatio}}) + "px";
  if (div.querySelector("script[data-embed]")) return;
  var s = document.createElement("script");
  s.src = {{.ScriptURL}};
  s.setAttribute("data-embed", {{.ID}});
  viz.parentNode.insertBefore(s, viz);
})();
</script>
`))

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{.Fragment}}</body>
</html>
`))

type view struct {
	Widget
	HostParam string
}

// Fragment renders the embed markup and its one-shot activation script.
func (w Widget) Fragment() (template.HTML, error) {
	var buf bytes.Buffer
	if err := fragment.Execute(&buf, view{Widget: w, HostParam: url.QueryEscape(w.HostURL)}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// WritePage writes a standalone HTML page holding the widget.
func (w Widget) WritePage(out io.Writer) error {
	f, err := w.Fragment()
	if err != nil {
		return err
	}
	return page.Execute(out, struct {
		Title    string
		Fragment template.HTML
	}{w.Title, f})
}
