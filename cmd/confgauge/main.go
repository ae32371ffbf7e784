// confgauge renders confidence gauges: a half-circle dial with a pointer
// and a percentage, drawn either as a chart type on the chart host or by
// the standalone canvas renderer.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seenimoa/confgauge/api"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/config"
	"github.com/seenimoa/confgauge/internal/engine"
	"github.com/seenimoa/confgauge/internal/gauge"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set up before every command runs.
var (
	cfg    *config.Config
	logger *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "confgauge",
	Short: "confgauge — confidence gauge renderer",
	Long: `confgauge draws a score as a half-circle gauge: a colored value arc,
a pointer and a percentage. It renders through the gauge chart type when the
chart host accepts it and falls back to the standalone canvas renderer
otherwise. Output is SVG, PNG or the JSON list of drawing primitives.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if l, _ := cmd.Flags().GetString("log-level"); l != "" {
			level = l
		}
		format := cfg.Logging.Format
		if f, _ := cmd.Flags().GetString("log-format"); f != "" {
			format = f
		}
		logger, err = setupLogger(level, format, os.Stderr)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format override (text, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// setupLogger builds the process logger. Text output on a terminal gets
// short wall-clock timestamps.
func setupLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %v", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{})
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			log.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: time.Kitchen,
			})
		}
	}
	return log, nil
}

// newEngine builds the render engine from the gauge settings. A nil host
// means the process-wide chart registry. Strategy "plugin" fails when the
// host did not take the gauge type; "auto" accepts either outcome.
func newEngine(c *config.Config, log logrus.FieldLogger, host *chart.Registry) (*engine.Engine, error) {
	g := c.Gauge
	eng, err := engine.New(engine.Options{
		Host:        host,
		DisableHost: g.Strategy == string(engine.StrategyStandalone),
		Clamp:       g.Clamp,
		Palette: gauge.Palette{
			Positive: g.Palette.Positive,
			Warning:  g.Palette.Warning,
		},
		RingColors: gauge.RingColors{
			Accent:    g.Ring.Accent,
			Remainder: g.Ring.Remainder,
		},
		Radius:     g.Radius,
		TextFont:   g.TextFont,
		LabelFont:  g.LabelFont,
		Background: c.Render.Background,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up renderer: %w", err)
	}
	if g.Strategy == string(engine.StrategyPlugin) && eng.Strategy() != engine.StrategyPlugin {
		return nil, engine.ErrPluginUnavailable
	}
	return eng, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("confgauge %s\n", version)
		cmd.Printf("  commit:  %s\n", commit)
		cmd.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cfg, logger, nil)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		api.Version = version
		srv := api.NewServer(cfg, eng, logger)
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show renderer selection and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cfg, logger, nil)
		if err != nil {
			return err
		}
		printStatus(cmd, eng, cfg)
		return nil
	},
}

func printStatus(cmd *cobra.Command, eng *engine.Engine, c *config.Config) {
	cmd.Println("═══════════════════════════════════════")
	cmd.Println("  confgauge — Renderer Status")
	cmd.Println("═══════════════════════════════════════")
	cmd.Printf("  Version:   %s (%s)\n", version, commit)

	strategy := color.New(color.Bold, color.FgGreen).Sprint(eng.Strategy())
	if eng.Strategy() == engine.StrategyStandalone {
		strategy = color.New(color.Bold, color.FgYellow).Sprint(eng.Strategy())
	}
	cmd.Printf("  Strategy:  %s\n", strategy)
	if reg := eng.Registration(); reg.AlreadyPresent {
		cmd.Println("             (gauge type was already registered)")
	}
	cmd.Printf("  Clamp:     %s\n", bool2Text(eng.Clamp()))
	cmd.Printf("  Palette:   %s / %s\n", bold("%s", c.Gauge.Palette.Positive), bold("%s", c.Gauge.Palette.Warning))
	cmd.Printf("  Output:    %s %dx%d\n", bold("%s", c.Render.Format), c.Render.Width, c.Render.Height)
	cmd.Printf("  API:       %s\n", c.API.Addr())
	if c.ConfigFile != "" {
		cmd.Printf("  Config:    %s\n", c.ConfigFile)
	}
	cmd.Println()

	cmd.Println("  Settings:")
	for _, s := range config.CheckSettings(c) {
		source := string(s.Source)
		switch s.Source {
		case config.SourceEnv:
			source = color.CyanString("%s (%s)", source, config.EnvName(s.Key))
		case config.SourceConfig:
			source = color.GreenString("%s", source)
		}
		cmd.Printf("    %-24s %-28s %s\n", s.Key+":", s.Value, source)
	}
	cmd.Println("═══════════════════════════════════════")
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
