package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "INCOMEDASH_CONFIG"

// DefaultFile is picked up from the working directory when present.
const DefaultFile = "incomedash.yaml"

// Config is the complete dashboard configuration. It maps directly to the YAML
// file; fields left out of the file keep their defaults.
type Config struct {
	Sources struct {
		Topology       string `yaml:"topology"`        // TopoJSON document with state boundaries
		TopologyObject string `yaml:"topology_object"` // object inside the topology holding the states
		StateIncome    string `yaml:"state_income"`    // income-by-state JSON
		CityIncome     string `yaml:"city_income"`     // income-by-city CSV
	} `yaml:"sources"`
	ChartSpecDir string `yaml:"chartspec_dir"` // directory of {data, layout, config} JSON files
	HTTP         struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Charts Charts `yaml:"charts"`
	Widget Widget `yaml:"widget"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		File  string `yaml:"file"`  // TUI log file; serve/export log to stderr
		Level string `yaml:"level"` // debug, info, warn, error
	} `yaml:"log"`
}

// Charts holds the rendering knobs shared by every bar and map view.
type Charts struct {
	TopN          int           `yaml:"top_n"`
	PaddingFactor float64       `yaml:"padding_factor"` // headroom above the largest bar
	BandPadding   float64       `yaml:"band_padding"`
	Stagger       time.Duration `yaml:"stagger"`  // per-mark reveal offset
	Duration      time.Duration `yaml:"duration"` // reveal length
	FallbackFill  string        `yaml:"fallback_fill"`
	CityColor     string        `yaml:"city_color"`
	StateColor    string        `yaml:"state_color"`
	DetailColor   string        `yaml:"detail_color"`
}

// Widget describes the externally hosted visualization embed.
type Widget struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Title       string  `yaml:"title"`
	HostURL     string  `yaml:"host_url"`
	StaticImage string  `yaml:"static_image"`
	ScriptURL   string  `yaml:"script_url"`
	AspectRatio float64 `yaml:"aspect_ratio"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	var c Config
	c.Sources.Topology = "https://cdn.jsdelivr.net/npm/us-atlas@3/states-10m.json"
	c.Sources.TopologyObject = "states"
	c.Sources.StateIncome = "https://gist.githubusercontent.com/chaithuchowdhary/a487127476e1ec697be7e2f4abf7a15b/raw/67f493e03d11d649fec8760546e8155f6308dd50/stateincome.json"
	c.Sources.CityIncome = "https://gist.githubusercontent.com/chaithuchowdhary/66e91b9faf1a3b91bf9ac22131dbf7cc/raw/82af525e5694cc96f5b518e90bb07c0459cf264d/income.csv"
	c.ChartSpecDir = "charts"
	c.HTTP.Timeout = 30 * time.Second
	c.Charts = Charts{
		TopN:          10,
		PaddingFactor: 1.1,
		BandPadding:   0.2,
		Stagger:       100 * time.Millisecond,
		Duration:      time.Second,
		FallbackFill:  "#cccccc",
		CityColor:     "#3498db",
		StateColor:    "#e74c3c",
		DetailColor:   "#4682b4",
	}
	c.Widget = Widget{
		ID:          "viz1744229295000",
		Name:        "AnalysisofHousePrice_17441589744680/AnalysisofHousePricesandHowincomeaffectingpurchasingpower",
		Title:       "Analysis of House Prices and How income affecting purchasing power",
		HostURL:     "https://public.tableau.com/",
		StaticImage: "https://public.tableau.com/static/images/An/AnalysisofHousePrice_17441589744680/AnalysisofHousePricesandHowincomeaffectingpurchasingpower/1.png",
		ScriptURL:   "https://public.tableau.com/javascripts/api/viz_v1.js",
		AspectRatio: 0.75,
	}
	c.Server.Addr = ":8080"
	c.Log.File = "incomedash.log"
	c.Log.Level = "info"
	return c
}

// Load reads a YAML file over the defaults. An empty path falls back to
// $INCOMEDASH_CONFIG and then to ./incomedash.yaml; if none exists the
// defaults are returned unchanged.
func Load(path string) (Config, error) {
	c := Default()
	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var (
	ErrTopN          = errors.New("config: charts.top_n must be positive")
	ErrPaddingFactor = errors.New("config: charts.padding_factor must be >= 1")
	ErrBandPadding   = errors.New("config: charts.band_padding must be in [0, 1)")
)

// Validate rejects values the chart builders cannot work with.
func (c Config) Validate() error {
	if c.Charts.TopN <= 0 {
		return ErrTopN
	}
	if c.Charts.PaddingFactor < 1 {
		return ErrPaddingFactor
	}
	if c.Charts.BandPadding < 0 || c.Charts.BandPadding >= 1 {
		return ErrBandPadding
	}
	return nil
}
