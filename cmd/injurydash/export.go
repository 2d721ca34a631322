package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/injurydash/internal/chart"
	"github.com/verte-zerg/injurydash/internal/config"
	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/describe"
	"github.com/verte-zerg/injurydash/internal/model"
	"github.com/verte-zerg/injurydash/internal/stats"
	"github.com/verte-zerg/injurydash/internal/store"
)

var (
	datasetsRows int

	exportFrom   string
	exportTo     string
	exportFormat string
	exportOut    string
	exportPNGDir string
)

func newDatasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Describe the datasets and preview their first rows",
		Args:  cobra.NoArgs,
		RunE:  runDatasetsCmd,
	}
	cmd.Flags().IntVar(&datasetsRows, "rows", describe.DefaultRows, "preview rows per table")
	return cmd
}

func runDatasetsCmd(cmd *cobra.Command, _ []string) error {
	if datasetsRows <= 0 {
		return fmt.Errorf("--rows must be > 0")
	}
	cfg, err := resolveDashboardConfig(cmd)
	if err != nil {
		return err
	}
	st, err := loadDataset(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if err := describe.Render(cmd.OutOrStdout(), st, describe.Options{Rows: datasetsRows, Color: !color.NoColor}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the dashboard once as JSON/YAML chart specs and optional PNGs",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFrom, "from", "", "first treatment date (YYYY-MM-DD, default: earliest)")
	cmd.Flags().StringVar(&exportTo, "to", "", "last treatment date (YYYY-MM-DD, default: latest)")
	cmd.Flags().StringVar(&exportFormat, "format", chart.FormatJSON, "output format (json or yaml)")
	cmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file (- for stdout)")
	cmd.Flags().StringVar(&exportPNGDir, "png-dir", "", "also write one PNG per chart into this directory")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	dashCfg, err := resolveDashboardConfig(cmd)
	if err != nil {
		return err
	}
	format, err := chart.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	cfg := model.ExportConfig{
		Dashboard: dashCfg,
		Format:    format,
		OutPath:   exportOut,
		PNGDir:    exportPNGDir,
	}
	if cfg.From, err = parseDateFlag("from", exportFrom); err != nil {
		return err
	}
	if cfg.To, err = parseDateFlag("to", exportTo); err != nil {
		return err
	}

	st, err := loadDataset(cmd.Context(), dashCfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cfg.OutPath != "" && cfg.OutPath != "-" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				slog.Warn("failed to close output", "path", cfg.OutPath, "error", cerr)
			}
		}()
		w = f
	}
	return exportDashboard(cmd.Context(), w, st, cfg)
}

func parseDateFlag(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := dataset.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value: %w", name, err)
	}
	return &parsed, nil
}

// exportCriteria starts from the default selection and applies the explicit
// bounds. Inverted bounds are rejected.
func exportCriteria(scope stats.Scope, cfg model.ExportConfig) (model.FilterCriteria, error) {
	c := scope.DefaultCriteria(cfg.Dashboard.AgeMin, cfg.Dashboard.AgeMax)
	if cfg.From != nil {
		c.DateStart = *cfg.From
	}
	if cfg.To != nil {
		c.DateEnd = *cfg.To
	}
	if err := stats.ValidateCriteria(c); err != nil {
		return model.FilterCriteria{}, err
	}
	return scope.Clamp(c), nil
}

func exportDashboard(ctx context.Context, w io.Writer, st *dataset.Store, cfg model.ExportConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scope := stats.NewScope(st, cfg.Dashboard.ProductMode, cfg.Dashboard.ProductCode)
	criteria, err := exportCriteria(scope, cfg)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(st, scope, criteria)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	d := chart.Build(report)
	d.ID = uuid.NewString()
	slog.Debug("built dashboard", "id", d.ID, "product", d.Product.Code, "records", d.Records)

	if cfg.PNGDir != "" {
		paths, err := chart.WritePNGs(ctx, cfg.PNGDir, d)
		if err != nil {
			return fmt.Errorf("failed to write charts: %w", err)
		}
		for _, p := range paths {
			slog.Info("wrote chart", "path", p)
		}
	}
	if err := chart.Encode(w, d, cfg.Format); err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV files into a SQLite database",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveDashboardConfig(cmd)
	if err != nil {
		return err
	}
	target := cfg.DBPath
	if target == "" {
		target = config.DefaultDBPath()
	}
	cfg.DBPath = ""
	st, err := loadDataset(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	counts, err := importDataset(cmd.Context(), target, st)
	if err != nil {
		return err
	}
	slog.Info("imported datasets", "db", target,
		"injuries", counts.Injuries, "products", counts.Products, "population", counts.Population)
	return nil
}

func importDataset(ctx context.Context, path string, st *dataset.Store) (store.Counts, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := store.Open(path)
	if err != nil {
		return store.Counts{}, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			slog.Warn("failed to close db", "error", cerr)
		}
	}()
	if err := db.Import(ctx, st); err != nil {
		return store.Counts{}, fmt.Errorf("failed to import datasets: %w", err)
	}
	return db.Counts(ctx)
}
