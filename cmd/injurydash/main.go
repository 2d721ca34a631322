// Package main provides the CLI entrypoint for injurydash.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/verte-zerg/injurydash/internal/config"
	"github.com/verte-zerg/injurydash/internal/dashboard"
	"github.com/verte-zerg/injurydash/internal/dataset"
	applog "github.com/verte-zerg/injurydash/internal/log"
	"github.com/verte-zerg/injurydash/internal/model"
	"github.com/verte-zerg/injurydash/internal/stats"
	"github.com/verte-zerg/injurydash/internal/store"
)

var (
	verbose bool
	quiet   bool

	dataDir string
	dbPath  string

	productCode  int
	mostFrequent bool
	ageMin       int
	ageMax       int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "injurydash",
		Short:         "Terminal dashboard for consumer product injury data",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			applog.Setup(verbose, quiet)
		},
		RunE: runDashboardCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	addDataFlags(rootCmd.PersistentFlags())
	addDashboardFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func addDataFlags(fs *pflag.FlagSet) {
	fs.StringVar(&dataDir, "data-dir", config.DefaultDataDir(), "directory containing injuries.csv, products.csv and population.csv")
	fs.StringVar(&dbPath, "db", "", "read the datasets from this SQLite file instead of the CSV files")
}

func addDashboardFlags(fs *pflag.FlagSet) {
	fs.IntVar(&productCode, "product-code", stats.DefaultProductCode, "product code to analyze")
	fs.BoolVar(&mostFrequent, "most-frequent", false, "analyze the product causing the most injuries")
	fs.IntVar(&ageMin, "age-min", stats.DefaultAgeMin, "initial minimum age")
	fs.IntVar(&ageMax, "age-max", stats.DefaultAgeMax, "initial maximum age")
}

// resolveDashboardConfig merges the config file into unset flags.
func resolveDashboardConfig(cmd *cobra.Command) (model.DashboardConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.DashboardConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data-dir", &dataDir, fileCfg.Data.Dir)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Data.DB)
	applyIntConfig(cmd, "product-code", &productCode, fileCfg.Dashboard.ProductCode)
	applyBoolConfig(cmd, "most-frequent", &mostFrequent, fileCfg.Dashboard.MostFrequent)
	applyIntConfig(cmd, "age-min", &ageMin, fileCfg.Dashboard.AgeMin)
	applyIntConfig(cmd, "age-max", &ageMax, fileCfg.Dashboard.AgeMax)

	cfg := model.DashboardConfig{
		DataDir:     dataDir,
		DBPath:      dbPath,
		ProductMode: model.ProductFixed,
		ProductCode: productCode,
		AgeMin:      ageMin,
		AgeMax:      ageMax,
	}
	if mostFrequent {
		cfg.ProductMode = model.ProductMostFrequent
	}
	if err := validateConfig(cfg); err != nil {
		return model.DashboardConfig{}, err
	}
	return cfg, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveDashboardConfig(cmd)
	if err != nil {
		return err
	}
	st, err := loadDataset(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	restore := applog.Silence()
	defer restore()
	program := tea.NewProgram(dashboard.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadDataset reads the three tables from SQLite when a database is
// configured and from the CSV directory otherwise.
func loadDataset(ctx context.Context, cfg model.DashboardConfig) (*dataset.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				slog.Warn("failed to close db", "error", cerr)
			}
		}()
		st, err := db.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load datasets from %s: %w", cfg.DBPath, err)
		}
		slog.Info("loaded datasets", "db", cfg.DBPath, "injuries", len(st.Injuries()))
		return st, nil
	}
	st, err := dataset.LoadDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	slog.Info("loaded datasets", "dir", cfg.DataDir, "injuries", len(st.Injuries()),
		"products", len(st.Products()), "population", len(st.Population()))
	return st, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		slog.Info("created config", "path", path)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# injurydash configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# dir = %q                # Directory with injuries.csv, products.csv, population.csv
# db = %q                 # SQLite file written by "injurydash import"

[dashboard]
# product-code = %d       # Product code to analyze
# most-frequent = false   # Analyze the product causing the most injuries instead
# age-min = %d            # Initial minimum age
# age-max = %d            # Initial maximum age
`,
		config.DefaultDataDir(),
		config.DefaultDBPath(),
		stats.DefaultProductCode,
		stats.DefaultAgeMin,
		stats.DefaultAgeMax,
	)
}

func validateConfig(cfg model.DashboardConfig) error {
	if cfg.ProductMode == model.ProductFixed && cfg.ProductCode <= 0 {
		return fmt.Errorf("--product-code must be > 0")
	}
	if cfg.AgeMin < 0 {
		return fmt.Errorf("--age-min must be >= 0")
	}
	if cfg.AgeMax < cfg.AgeMin {
		return fmt.Errorf("--age-max must be >= --age-min")
	}
	if cfg.DBPath == "" && cfg.DataDir == "" {
		return fmt.Errorf("--data-dir must not be empty")
	}
	return nil
}
