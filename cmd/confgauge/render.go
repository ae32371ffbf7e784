package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/confgauge/internal/config"
	"github.com/seenimoa/confgauge/internal/engine"
	"github.com/seenimoa/confgauge/pkg/models"
)

// --- Render Command ---

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one gauge",
	Long: `Render one gauge to a file or stdout.

Examples:
  confgauge render --value 0.82 -o gauge.svg
  confgauge render --value 0.31 --fake --format png -o warn.png
  confgauge render --value 42 --min 0 --max 60 --label Load --strategy standalone`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cfg, logger, nil)
		if err != nil {
			return err
		}

		req := requestFromFlags(cmd)
		body, format, err := renderRequest(eng, req, cfg.Render)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" || out == "-" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return pkgerrors.Wrapf(err, "failed to write %s", out)
		}
		cmd.PrintErrf("%s %s (%s, %d bytes)\n", color.GreenString("✔ wrote"), out, format, len(body))
		return nil
	},
}

func init() {
	f := renderCmd.Flags()
	f.Float64("value", 0, "score to show")
	f.Float64("min", 0, "lower bound of the score domain")
	f.Float64("max", 1, "upper bound of the score domain")
	f.Bool("fake", false, "use the warning color for the value arc")
	f.String("label", "", "caption under the percentage")
	f.Int("decimals", -1, "percentage decimals (default: renderer's own)")
	f.String("strategy", "", "plugin or standalone (default: the selected one)")
	f.String("format", "", "svg, png or json (default: render.format)")
	f.Int("width", 0, "surface width (default: render.width)")
	f.Int("height", 0, "surface height (default: render.height)")
	f.StringP("output", "o", "", "output file; - or empty for stdout")
	_ = renderCmd.MarkFlagRequired("value")
}

func requestFromFlags(cmd *cobra.Command) models.GaugeRequest {
	f := cmd.Flags()
	var req models.GaugeRequest
	req.Value, _ = f.GetFloat64("value")
	if f.Changed("min") {
		v, _ := f.GetFloat64("min")
		req.MinValue = &v
	}
	if f.Changed("max") {
		v, _ := f.GetFloat64("max")
		req.MaxValue = &v
	}
	req.Fake, _ = f.GetBool("fake")
	req.Label, _ = f.GetString("label")
	if d, _ := f.GetInt("decimals"); d >= 0 {
		req.Decimals = &d
	}
	req.Strategy, _ = f.GetString("strategy")
	req.Format, _ = f.GetString("format")
	req.Width, _ = f.GetInt("width")
	req.Height, _ = f.GetInt("height")
	return req
}

// renderRequest renders req, filling format and size from the render
// defaults.
func renderRequest(eng *engine.Engine, req models.GaugeRequest, defaults config.RenderConfig) ([]byte, engine.Format, error) {
	name := req.Format
	if name == "" {
		name = defaults.Format
	}
	format, err := engine.ParseFormat(name)
	if err != nil {
		return nil, "", err
	}
	renderer, err := eng.RendererFor(engine.Strategy(req.Strategy))
	if err != nil {
		return nil, "", err
	}

	width, height := req.Width, req.Height
	if width <= 0 && height <= 0 {
		width, height = defaults.Width, defaults.Height
	}
	body, err := eng.Render(renderer, format, req.Spec(), width, height)
	if err != nil {
		return nil, "", err
	}
	return body, format, nil
}

// --- Batch Command ---

var batchCmd = &cobra.Command{
	Use:   "batch [manifest.json]",
	Short: "Render every gauge listed in a manifest",
	Long: `Render every gauge listed in a JSON manifest into a directory.

The manifest is {"items": [{"name": "cpu", "value": 0.82, ...}, ...]} where
each item takes the same fields as the gauge API request. Files are named
after the item and its format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cfg, logger, nil)
		if err != nil {
			return err
		}

		manifest, err := readManifest(args[0])
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = cfg.Render.Workers
		}

		written, err := runBatch(cmd.Context(), eng, manifest, outDir, workers, cfg.Render, logger)
		if err != nil {
			return err
		}
		cmd.PrintErrf("%s %d gauges to %s\n", color.GreenString("✔ rendered"), len(written), outDir)
		return nil
	},
}

func init() {
	batchCmd.Flags().String("out", ".", "output directory")
	batchCmd.Flags().Int("workers", 0, "concurrent renders (default: render.workers)")
}

func readManifest(path string) (models.BatchManifest, error) {
	var m models.BatchManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, pkgerrors.Wrap(err, "failed to read manifest")
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, pkgerrors.Wrapf(err, "invalid manifest %s", path)
	}
	if len(m.Items) == 0 {
		return m, fmt.Errorf("manifest %s lists no items", path)
	}
	return m, nil
}

// runBatch renders the manifest items concurrently, at most workers at a
// time, each on its own surface. The first failure cancels the rest. It
// returns the written paths in manifest order.
func runBatch(ctx context.Context, eng *engine.Engine, m models.BatchManifest, outDir string, workers int, defaults config.RenderConfig, log logrus.FieldLogger) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create output directory")
	}
	if workers <= 0 {
		workers = 1
	}

	paths := make([]string, len(m.Items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range m.Items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := itemName(item.Name, i)
			body, format, err := renderRequest(eng, item.GaugeRequest, defaults)
			if err != nil {
				return fmt.Errorf("item %q: %w", name, err)
			}
			path := filepath.Join(outDir, name+"."+string(format))
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return pkgerrors.Wrapf(err, "item %q", name)
			}
			log.WithFields(logrus.Fields{"item": name, "path": path}).Debug("gauge rendered")
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// itemName returns a file-safe base name for a manifest item.
func itemName(name string, index int) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Sprintf("gauge-%d", index+1)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
