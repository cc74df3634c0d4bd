// Package main is the transformflow command, which estimates camera bearings
// for recorded captures.
package main

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/edaniels/golog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ioquatix/transform-flow/config"
	"github.com/ioquatix/transform-flow/features"
	"github.com/ioquatix/transform-flow/rimage"
	"github.com/ioquatix/transform-flow/sensorlog"
	"github.com/ioquatix/transform-flow/utils"
	"github.com/ioquatix/transform-flow/videostream"
)

const (
	// Flags.
	flagConfig    = "config"
	flagDebug     = "debug"
	flagCapture   = "capture"
	flagModel     = "model"
	flagStrategy  = "strategy"
	flagDetector  = "detector"
	flagTilt      = "tilt"
	flagOutput    = "output"
	flagBasicLine = "with-basic"
	flagHistogram = "histogram"

	histogramBins  = 10
	histogramWidth = 40

	metadataLogger = "logger"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func captureFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagCapture,
			Usage: "capture `DIR` holding the sensor log and frames",
		},
		&cli.StringFlag{
			Name:  flagModel,
			Usage: "motion model, basic or hybrid",
		},
		&cli.StringFlag{
			Name:  flagStrategy,
			Usage: "alignment strategy, priority or window",
		},
		&cli.StringFlag{
			Name:  flagDetector,
			Usage: "edge detector, laplacian or color-distance",
		},
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "transformflow",
		Usage:     "estimate camera bearings from recorded captures",
		Writer:    out,
		ErrWriter: out,
		Metadata:  map[string]interface{}{metadataLogger: zap.NewNop().Sugar()},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				c.App.Metadata[metadataLogger] = golog.NewDebugLogger("transformflow")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "bearing",
				Usage: "print the estimated bearing at every frame of a capture",
				Flags: append(captureFlags(),
					&cli.BoolFlag{
						Name:  flagHistogram,
						Usage: "print a histogram of the bearing change between frames",
					},
				),
				Action: bearingAction,
			},
			{
				Name:      "scan",
				Usage:     "scan an image for features and print them",
				ArgsUsage: "<image>",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagTilt,
						Usage: "camera tilt in degrees",
					},
					&cli.StringFlag{
						Name:  flagDetector,
						Usage: "edge detector, laplacian or color-distance",
					},
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the image with scan lines and features drawn on it to `FILE`",
					},
				},
				Action: scanAction,
			},
			{
				Name:  "plot",
				Usage: "plot the estimated bearing over a capture",
				Flags: append(captureFlags(),
					&cli.StringFlag{
						Name:     flagOutput,
						Aliases:  []string{"o"},
						Usage:    "write the plot to `FILE`",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  flagBasicLine,
						Usage: "also plot the sensor-only bearing",
					},
				),
				Action: plotAction,
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the config file",
				Action: func(c *cli.Context) error {
					schema, err := config.Schema()
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(schema))
					return nil
				},
			},
		},
	}
}

// loadConfig reads the config file if one was given and applies any flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String(flagConfig); path != "" {
		read, err := config.Read(path)
		if err != nil {
			return nil, err
		}
		cfg = read
	}
	if v := c.String(flagCapture); v != "" {
		cfg.Capture = v
	}
	if v := c.String(flagModel); v != "" {
		cfg.Model = v
	}
	if v := c.String(flagStrategy); v != "" {
		cfg.Alignment.Strategy = v
	}
	if v := c.String(flagDetector); v != "" {
		cfg.Scan.Detector = v
	}
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// appLogger is the logger of a single app run, quiet unless --debug was given.
func appLogger(app *cli.App) golog.Logger {
	if logger, ok := app.Metadata[metadataLogger].(golog.Logger); ok {
		return logger
	}
	return zap.NewNop().Sugar()
}

func openStream(cfg *config.Config, logger golog.Logger) (*videostream.Stream, error) {
	capture, err := sensorlog.Open(cfg.Capture, logger)
	if err != nil {
		return nil, err
	}
	model, err := cfg.NewModel(logger)
	if err != nil {
		return nil, err
	}
	stream := videostream.New(capture.Updates, model, cfg.ScanOptions(), logger)
	if err := stream.AttachTrackingPoints(capture.TrackingPoints); err != nil {
		return nil, err
	}
	return stream, nil
}

func bearingAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	stream, err := openStream(cfg, appLogger(c.App))
	if err != nil {
		return err
	}

	w := c.App.Writer
	for _, frame := range stream.Frames() {
		header := frame.Update.Header
		if !frame.Valid {
			fmt.Fprintf(w, "frame %d t=%.3f invalid\n", frame.Index, header.Time)
			continue
		}
		var points int
		if frame.Points != nil {
			points = len(frame.Points.Offsets())
		}
		fmt.Fprintf(w, "frame %d t=%.3f bearing=%.3f tilt=%.3f points=%d tracking=%d\n",
			frame.Index, header.Time, frame.Bearing, utils.RadToDeg(frame.Tilt), points, len(frame.TrackingPoints))
		for _, note := range header.Notes {
			fmt.Fprintf(w, "  %s\n", note)
		}
	}
	return printSummary(w, stream.Bearings(), c.Bool(flagHistogram))
}

func printSummary(w io.Writer, bearings []float64, withHistogram bool) error {
	if len(bearings) == 0 {
		fmt.Fprintln(w, "no valid frames")
		return nil
	}

	steps := make(stats.Float64Data, 0, len(bearings))
	for i := 1; i < len(bearings); i++ {
		steps = append(steps, math.Abs(utils.AngleDiffDeg(bearings[i], bearings[i-1])))
	}

	data := stats.Float64Data(bearings)
	mean, err := data.Mean()
	if err != nil {
		return err
	}
	median, err := data.Median()
	if err != nil {
		return err
	}
	stddev, err := data.StandardDeviation()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "frames=%d mean=%.3f median=%.3f stddev=%.3f\n", len(bearings), mean, median, stddev)

	if len(steps) > 0 {
		stepMean, err := steps.Mean()
		if err != nil {
			return err
		}
		stepMax, err := steps.Max()
		if err != nil {
			return err
		}
		p95, err := steps.Percentile(95)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "step mean=%.3f p95=%.3f max=%.3f\n", stepMean, p95, stepMax)
		if withHistogram {
			printHistogram(w, steps)
		}
	}
	return nil
}

func printHistogram(w io.Writer, values []float64) {
	lowest, err := stats.Min(values)
	if err != nil {
		return
	}
	highest, err := stats.Max(values)
	if err != nil {
		return
	}
	if lowest == highest {
		fmt.Fprintf(w, "%8.3f-%-8.3f %5d %s\n", lowest, highest, len(values), strings.Repeat("#", histogramWidth))
		return
	}

	hist := histogram.Hist(histogramBins, values)
	largest := 0
	for _, bkt := range hist.Buckets {
		largest = utils.MaxInt(largest, bkt.Count)
	}
	if largest == 0 {
		return
	}
	for _, bkt := range hist.Buckets {
		bar := strings.Repeat("#", bkt.Count*histogramWidth/largest)
		fmt.Fprintf(w, "%8.3f-%-8.3f %5d %s\n", bkt.Min, bkt.Max, bkt.Count, bar)
	}
}

func scanAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one image")
	}
	img, err := rimage.NewImageFromFile(c.Args().First())
	if err != nil {
		return err
	}

	cfg := config.Config{Scan: config.ScanConfig{Detector: c.String(flagDetector)}}
	if err := cfg.Scan.Validate("scan"); err != nil {
		return err
	}
	points := features.NewPoints(cfg.ScanOptions())
	points.Scan(img, utils.DegToRad(c.Float64(flagTilt)))

	w := c.App.Writer
	offsets := points.Offsets()
	fmt.Fprintf(w, "image %dx%d segments=%d features=%d\n", img.Width(), img.Height(), len(points.Segments()), len(offsets))
	for i, offset := range offsets {
		fmt.Fprintf(w, "%d %.2f %.2f\n", i, offset.X, offset.Y)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Bin", "Count", "Average"})
	for bin, count := range points.Table().Counts() {
		if count > 0 {
			t.AppendRow(table.Row{bin, count, fmt.Sprintf("%.2f", points.Table().AveragePosition(bin).Value())})
		}
	}
	fmt.Fprintln(w, t.Render())

	if output := c.String(flagOutput); output != "" {
		if err := rimage.WriteImageToFile(output, points.Draw(img)); err != nil {
			return err
		}
		appLogger(c.App).Infow("wrote scan", "output", output)
	}
	return nil
}

func plotAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Bearing"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Degrees"

	logger := appLogger(c.App)

	// the replays share no state
	var primary, basic *videostream.Stream
	var g errgroup.Group
	g.Go(func() (err error) {
		primary, err = openStream(cfg, logger)
		return err
	})
	if c.Bool(flagBasicLine) && cfg.Model != config.ModelBasic {
		basicCfg := *cfg
		basicCfg.Model = config.ModelBasic
		g.Go(func() (err error) {
			basic, err = openStream(&basicCfg, logger)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := addLine(p, primary.ValidFrames(), color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}
	if basic != nil {
		if err := addLine(p, basic.ValidFrames(), color.RGBA{B: 200, A: 255}); err != nil {
			return err
		}
	}

	output := c.String(flagOutput)
	if err := p.Save(8*vg.Inch, 4*vg.Inch, output); err != nil {
		return errors.Wrapf(err, "cannot write plot %q", output)
	}
	logger.Infow("wrote plot", "output", output)
	return nil
}

func addLine(p *plot.Plot, frames []videostream.Frame, c color.Color) error {
	pts := make(plotter.XYs, 0, len(frames))
	for _, f := range frames {
		pts = append(pts, plotter.XY{X: float64(f.Index), Y: f.Bearing})
	}
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	return nil
}
