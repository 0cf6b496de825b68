package dash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"incomedash/internal/chart"
	"incomedash/internal/state"
	"incomedash/internal/svg"
)

// Export writes every view as a standalone SVG under dir: map.svg, one
// detail/<state>.svg per state, cities.svg and states.svg. A failed source
// skips its views; the other views are still written.
func (d *Dashboard) Export(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(dir, "detail"), 0o755); err != nil {
		return nil, err
	}
	var (
		written []string
		errs    []error
	)
	write := func(name string, s chart.Scene) {
		p := filepath.Join(dir, name)
		if err := writeSVG(p, s); err != nil {
			errs = append(errs, err)
			return
		}
		written = append(written, p)
	}

	if md, err := d.LoadMap(ctx); err != nil {
		errs = append(errs, err)
	} else if s, err := d.MapScene(md); err != nil {
		errs = append(errs, err)
	} else {
		write("map.svg", s)
		var sel state.Selection
		for _, st := range md.States {
			sel, _ = sel.Select(st.Name)
			write(filepath.Join("detail", FileName(st.Name)+".svg"), d.DetailScene(md, sel))
		}
	}

	if ci, err := d.LoadRanking(ctx); err != nil {
		errs = append(errs, err)
	} else if cities, states, err := d.RankingScenes(ci); err != nil {
		errs = append(errs, err)
	} else {
		write("cities.svg", cities)
		write("states.svg", states)
	}

	d.l.Info("export finished", slog.String("dir", dir), slog.Int("files", len(written)), slog.Int("errors", len(errs)))
	return written, errors.Join(errs...)
}

func writeSVG(path string, s chart.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := svg.Write(f, s); err != nil {
		f.Close()
		return fmt.Errorf("dash: write %s: %w", path, err)
	}
	return f.Close()
}

// FileName turns a category name into a portable file name.
func FileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, name)
	if name == "" {
		return "_"
	}
	return name
}
