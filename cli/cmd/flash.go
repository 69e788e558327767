package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/build"
	"github.com/moffa90/go-hf2/cli/render"
	"github.com/moffa90/go-hf2/firmware"
)

// flashAction builds the firmware, finds the device and synchronizes it.
func flashAction(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() > 0 {
			return fmt.Errorf("unexpected argument %q", c.Args().First())
		}

		s, err := loadSettings(c)
		if err != nil {
			return err
		}
		logger, err := s.logger(env)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		path := c.String("file")
		if path == "" {
			req, err := buildRequest(c)
			if err != nil {
				return err
			}
			path, err = env.Builder.Build(c.Context, req)
			if err != nil {
				return err
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		if firmware.DetectFormat(data) == firmware.FormatUnknown {
			return fmt.Errorf("%s: %w: unrecognized image format", path, firmware.ErrMalformedImage)
		}

		dev, err := openDevice(c.Context, env, s, logger)
		if err != nil {
			return err
		}
		defer func() { _ = dev.Port.Close() }()

		printer := render.NewPrinter(env.Stdout, s.noColor)
		printer.Status("Flashing", "%s", path)
		start := time.Now()

		progress := render.NewProgress(env.Stderr, env.Interactive)
		opts := append(sessionOptions(env, s, logger),
			bootloader.WithProgressCallback(progress.Callback()),
			bootloader.WithForceWrite(s.force),
			bootloader.WithVerifyAfterWrite(s.verify),
		)

		report, err := bootloader.New(dev.Port, opts...).Program(c.Context, firmware.Segments(data))
		progress.Finish()
		if err != nil {
			return err
		}

		logger.Debug("flash report",
			"segments", len(report.Segments),
			"written", report.PagesWritten,
			"skipped", report.PagesSkipped,
			"armed", report.Armed,
		)
		printer.Status("Finished", "in %ss", seconds(time.Since(start)))
		return nil
	}
}

// buildRequest collects the cargo options from the flags.
func buildRequest(c *cli.Context) (build.Request, error) {
	req := build.Request{
		TargetTriple:      c.String("target"),
		ManifestPath:      c.String("manifest-path"),
		Package:           c.String("package"),
		Features:          splitFeatures(c.StringSlice("features")),
		AllFeatures:       c.Bool("all-features"),
		NoDefaultFeatures: c.Bool("no-default-features"),
	}

	bin, example := c.String("bin"), c.String("example")
	switch {
	case bin != "" && example != "":
		return req, fmt.Errorf("--bin and --example are mutually exclusive")
	case bin != "":
		req.Artifact = build.Artifact{Kind: build.ArtifactBin, Name: bin}
	case example != "":
		req.Artifact = build.Artifact{Kind: build.ArtifactExample, Name: example}
	}

	if c.Bool("release") {
		req.Profile = build.ProfileRelease
	}
	return req, nil
}

func splitFeatures(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })...)
	}
	return out
}

// seconds formats d with millisecond precision, like "1.5" or "0.032".
func seconds(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Milliseconds())/1000, 'f', -1, 64)
}
