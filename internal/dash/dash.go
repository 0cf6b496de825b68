// Package dash wires configuration, loading and scene building together so
// every surface (terminal, web, export) draws the same views.
package dash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"incomedash/internal/chart"
	"incomedash/internal/config"
	"incomedash/internal/data"
	"incomedash/internal/embed"
	"incomedash/internal/geom"
	"incomedash/internal/state"
)

const (
	CitiesTitle = "Top 10 Cities"
	StatesTitle = "Top 10 States"
	Loading     = "Loading data..."
)

// MapData is everything the choropleth and its detail view need.
type MapData struct {
	Regions []geom.Region
	States  []data.StateIncome
	byName  map[string]data.StateIncome
}

func NewMapData(regions []geom.Region, states []data.StateIncome) MapData {
	return MapData{Regions: regions, States: states, byName: data.Index(states)}
}

// State returns the joined record for a state name.
func (md MapData) State(name string) (data.StateIncome, bool) {
	st, ok := md.byName[name]
	return st, ok
}

// Status is the line shown above the map.
func (md MapData) Status() string {
	if len(md.States) == 0 {
		return Loading
	}
	return fmt.Sprintf("Loaded data for %d states.", len(md.States))
}

type Dashboard struct {
	cfg config.Config
	f   *data.Fetcher
	l   *slog.Logger
}

func New(cfg config.Config, f *data.Fetcher) *Dashboard {
	if f == nil {
		f = data.NewFetcher(cfg.HTTP.Timeout)
	}
	return &Dashboard{cfg: cfg, f: f, l: slog.Default().With(slog.String("module", "dash"))}
}

func (d *Dashboard) Config() config.Config { return d.cfg }

// LoadRegions fetches the boundary document. TopoJSON is converted through
// the configured object; a plain GeoJSON FeatureCollection is read directly.
func (d *Dashboard) LoadRegions(ctx context.Context) ([]geom.Region, error) {
	b, err := d.f.Fetch(ctx, d.cfg.Sources.Topology)
	if err != nil {
		return nil, err
	}
	topo, err := geom.ParseTopology(b)
	if errors.Is(err, geom.ErrNotTopology) {
		return geom.ParseGeoJSON(b)
	}
	if err != nil {
		return nil, err
	}
	return topo.Regions(d.cfg.Sources.TopologyObject)
}

// LoadMap fetches boundaries and state income concurrently. Either failure
// fails the load; the caller keeps showing its loading state.
func (d *Dashboard) LoadMap(ctx context.Context) (MapData, error) {
	var (
		wg      sync.WaitGroup
		regions []geom.Region
		states  []data.StateIncome
		rerr    error
		serr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		regions, rerr = d.LoadRegions(ctx)
	}()
	go func() {
		defer wg.Done()
		states, serr = d.f.FetchStateIncome(ctx, d.cfg.Sources.StateIncome)
	}()
	wg.Wait()
	if err := errors.Join(rerr, serr); err != nil {
		d.l.Error("map load failed", slog.Any("err", err))
		return MapData{}, err
	}
	d.l.Info("map loaded", slog.Int("regions", len(regions)), slog.Int("states", len(states)))
	return NewMapData(regions, states), nil
}

// LoadRanking fetches the city income CSV.
func (d *Dashboard) LoadRanking(ctx context.Context) (data.CityIncome, error) {
	ci, err := d.f.FetchCityIncome(ctx, d.cfg.Sources.CityIncome)
	if err != nil {
		d.l.Error("ranking load failed", slog.Any("err", err))
		return data.CityIncome{}, err
	}
	d.l.Info("ranking loaded", slog.Int("rows", ci.Rows), slog.Int("cities", len(ci.Cities)), slog.Int("states", len(ci.States)))
	return ci, nil
}

func (d *Dashboard) MapOptions() chart.MapOptions {
	o := chart.DefaultMapOptions()
	if d.cfg.Charts.FallbackFill != "" {
		o.Fallback = d.cfg.Charts.FallbackFill
	}
	return o
}

func (d *Dashboard) barOptions(o chart.BarOptions) chart.BarOptions {
	c := d.cfg.Charts
	o.PaddingFactor = c.PaddingFactor
	o.BandPadding = c.BandPadding
	o.Stagger = c.Stagger
	return o
}

// RankingOptions returns the options of the city or state panel.
func (d *Dashboard) RankingOptions(cities bool) chart.BarOptions {
	c := d.cfg.Charts
	title, noun, color := StatesTitle, "States", c.StateColor
	if cities {
		title, noun, color = CitiesTitle, "Cities", c.CityColor
	}
	if c.TopN != 10 {
		title = fmt.Sprintf("Top %d %s", c.TopN, noun)
	}
	o := d.barOptions(chart.RankingOptions(title, color))
	o.TopN = c.TopN
	o.Duration = c.Duration
	return o
}

func (d *Dashboard) DetailOptions() chart.BarOptions {
	return d.barOptions(chart.DetailOptions(d.cfg.Charts.DetailColor))
}

// MapScene builds the choropleth. Join misses are logged at debug level.
func (d *Dashboard) MapScene(md MapData) (chart.Scene, error) {
	s, err := chart.Choropleth(md.Regions, md.States, d.MapOptions())
	if err != nil {
		return chart.Scene{}, err
	}
	for _, name := range s.Unmatched {
		d.l.Debug("region without data", slog.String("region", name))
	}
	s.ID = "map"
	return s, nil
}

// DetailScene renders the selection's cities, the placeholder before any
// selection, or the empty state for a state without cities.
func (d *Dashboard) DetailScene(md MapData, sel state.Selection) chart.Scene {
	o := d.DetailOptions()
	if sel.Empty() {
		s := chart.Placeholder(o)
		s.ID = "detail"
		return s
	}
	st, ok := md.State(sel.Name)
	if !ok {
		d.l.Debug("selection without data", slog.String("state", sel.Name))
		st = data.StateIncome{Record: data.Record{Name: sel.Name}}
	}
	s := chart.DetailChart(st, o)
	s.ID = "detail"
	return s
}

// RankingScenes builds the city and state panels.
func (d *Dashboard) RankingScenes(ci data.CityIncome) (cities, states chart.Scene, err error) {
	cities, err = chart.RankingChart(ci.Cities, d.RankingOptions(true))
	if err != nil {
		return chart.Scene{}, chart.Scene{}, err
	}
	states, err = chart.RankingChart(ci.States, d.RankingOptions(false))
	if err != nil {
		return chart.Scene{}, chart.Scene{}, err
	}
	cities.ID, states.ID = "cities", "states"
	return cities, states, nil
}

func (d *Dashboard) Widget() embed.Widget { return embed.Widget(d.cfg.Widget) }

func (d *Dashboard) ChartSpecDir() string { return d.cfg.ChartSpecDir }
