package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/retro"
	"github.com/bodgit/retro/aspect"
	"github.com/bodgit/retro/dither"
	"github.com/bodgit/retro/palette"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func parseThresholds(s string) ([3]float64, error) {
	var t [3]float64
	if s == "" {
		return t, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != len(t) {
		return t, fmt.Errorf("thresholds must be three comma separated values, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return t, err
		}
		t[i] = f
	}
	return t, nil
}

func parseConfig(c *cli.Context) (retro.Config, error) {
	var cfg retro.Config
	var err error

	if cfg.Format, err = retro.ParseFormat(c.String("format")); err != nil {
		return cfg, err
	}
	if cfg.Aspect, err = aspect.ParseMode(c.String("aspect")); err != nil {
		return cfg, err
	}
	if s := c.String("dither"); s != "" {
		if cfg.Dither, err = dither.ParseMethod(s); err != nil {
			return cfg, err
		}
	}
	if cfg.Thresholds, err = parseThresholds(c.String("thresholds")); err != nil {
		return cfg, err
	}
	if cfg.Metric, err = palette.ParseMetric(c.String("metric")); err != nil {
		return cfg, err
	}

	cfg.Multiplier = c.Int("scale")
	cfg.Quantizer = c.String("quantizer")
	cfg.MixLevels = c.Int("mix-levels")
	cfg.NativePixels = c.Bool("native-pixels")
	cfg.Workers = c.Int("workers")

	return cfg, cfg.Validate()
}

func newConverter(c *cli.Context) (*retro.Converter, func(), error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	if c.String("cache") == "" {
		return retro.New(nil, logger), func() {}, nil
	}

	cache, err := retro.NewCache(c.String("cache"))
	if err != nil {
		return nil, nil, err
	}

	return retro.New(cache, logger), func() { cache.Close() }, nil
}

var convertFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		EnvVars: []string{"RETRO_FORMAT"},
		Value:   retro.VGA.String(),
		Usage:   "display format",
	},
	&cli.StringFlag{
		Name:    "aspect",
		Aliases: []string{"a"},
		Value:   aspect.Pad.String(),
		Usage:   "aspect mode: fit, pad, crop or stretch",
	},
	&cli.StringFlag{
		Name:    "dither",
		Aliases: []string{"d"},
		Usage:   "dithering method, defaults to the best choice for the format",
	},
	&cli.IntFlag{
		Name:    "scale",
		Aliases: []string{"s"},
		Value:   1,
		Usage:   fmt.Sprintf("integer upscale factor, 1 to %d", retro.MaxMultiplier),
	},
	&cli.StringFlag{
		Name:  "thresholds",
		Usage: "ordered dithering threshold scale as r,g,b",
	},
	&cli.StringFlag{
		Name:  "metric",
		Value: palette.Euclidean.String(),
		Usage: "color distance: euclidean or weighted",
	},
	&cli.StringFlag{
		Name:  "quantizer",
		Usage: "adaptive palette algorithm: mediancut or median",
	},
	&cli.IntFlag{
		Name:  "mix-levels",
		Value: dither.DefaultMixLevels,
		Usage: "Yliluoma mixing ratio granularity",
	},
	&cli.BoolFlag{
		Name:  "native-pixels",
		Usage: "dither at the native line count to reproduce non-square pixels",
	},
	&cli.IntFlag{
		Name:  "workers",
		Usage: "goroutines used by the ordered dithering methods",
	},
}

func main() {
	app := cli.NewApp()

	app.Name = "retro"
	app.Usage = "Retro PC display conversion utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"RETRO_CACHE"},
			Usage:   "path to result cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert an image",
			Description: "The output format is chosen by the file extension; .png, .gif or .pcx.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags:       convertFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := parseConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				r, closer, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				result, err := r.ConvertFile(c.Args().Get(0), c.Args().Get(1), cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if result.Exhausted != nil {
					fmt.Fprintf(os.Stderr, "warning: %v\n", result.Exhausted)
				}

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert every image in a directory tree",
			Description: "",
			ArgsUsage:   "SOURCE DESTINATION",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:    "jobs",
					Aliases: []string{"j"},
					Usage:   "number of images to convert at once, defaults to one per CPU",
				},
				&cli.StringFlag{
					Name:  "type",
					Value: "png",
					Usage: "output file type: png, gif or pcx",
				},
			}, convertFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := parseConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				r, closer, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				src, dst := c.Args().Get(0), c.Args().Get(1)
				ext := "." + strings.TrimPrefix(strings.ToLower(c.String("type")), ".")

				if err := r.ConvertDirectory(context.Background(), src, filepath.Clean(dst), ext, cfg, c.Int("jobs")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "formats",
			Usage: "List the display formats and dithering methods",
			Action: func(c *cli.Context) error {
				fmt.Println("Formats:")
				for _, f := range retro.Formats() {
					s, _ := f.Spec()
					canvas := s.Canvas()
					fmt.Printf("  %-6s %dx%d native, %dx%d canvas, %d colors, default %v\n", s.Name, s.Width, s.Height, canvas.X, canvas.Y, s.Palette.Size(), s.DefaultDither)
				}

				fmt.Println("Aspect modes:")
				for _, m := range aspect.Modes() {
					fmt.Printf("  %v\n", m)
				}

				fmt.Println("Dithering methods:")
				for _, m := range dither.Methods() {
					family := "error diffusion"
					if m.Ordered() {
						family = "ordered"
					}
					fmt.Printf("  %-18v %s\n", m, family)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
