package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"incomedash/internal/config"
	"incomedash/internal/dash"
	"incomedash/internal/data"
	"incomedash/internal/tui"
	"incomedash/internal/web"
)

var configPath string // --config

func main() {
	root := &cobra.Command{
		Use:   "incomedash",
		Short: "Explore US mean income by state and city",
		Long: `incomedash renders a state choropleth of mean income with a per-state
city breakdown, top-10 rankings of cities and states, an embedded
third-party visualization and any Plotly-style chart specs found on disk.

Without a subcommand the terminal dashboard starts.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvPath+" or ./"+config.DefaultFile+")")

	root.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Run the terminal dashboard",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	})

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard as web pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	root.AddCommand(serveCmd)

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write every chart as a standalone SVG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, out)
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "out", "output directory")
	root.AddCommand(exportCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

func loadDashboard() (config.Config, *dash.Dashboard, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, dash.New(cfg, data.NewFetcher(cfg.HTTP.Timeout)), nil
}

// setLogger installs the default slog logger writing to w.
func setLogger(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("config: log.level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// the screen belongs to the program, so logs go to a file
	f, err := tea.LogToFile(cfg.Log.File, "incomedash")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := setLogger(f, cfg.Log.Level); err != nil {
		return err
	}
	d := dash.New(cfg, data.NewFetcher(cfg.HTTP.Timeout))
	p := tea.NewProgram(tui.New(d),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(cmd.Context()),
	)
	_, err = p.Run()
	return err
}

func runServe(cmd *cobra.Command, addr string) error {
	cfg, d, err := loadDashboard()
	if err != nil {
		return err
	}
	if err := setLogger(os.Stderr, cfg.Log.Level); err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	slog.Info("serving dashboard", slog.String("addr", addr))
	return web.NewServer(d).ListenAndServe(cmd.Context(), addr)
}

func runExport(cmd *cobra.Command, out string) error {
	cfg, d, err := loadDashboard()
	if err != nil {
		return err
	}
	if err := setLogger(os.Stderr, cfg.Log.Level); err != nil {
		return err
	}
	files, err := d.Export(cmd.Context(), out)
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return err
}
