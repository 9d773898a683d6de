package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tinygo-org/ledstrip/clockless"
	"github.com/tinygo-org/ledstrip/internal/config"
	"github.com/tinygo-org/ledstrip/internal/metrics"
	"github.com/tinygo-org/ledstrip/internal/runner"
)

const projectName = "clockless strip simulator"

var (
	projectVersion = "dev"
	maskAny        = errors.WithStack
)

func main() {
	var (
		levelFlag   string
		logFile     string
		configPath  string
		metricsAddr string
		opts        runner.Options
		override    config.Strip
	)

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVar(&logFile, "log-file", "", "Also log to this file, rotated")
	pflag.StringVarP(&configPath, "config", "c", "", "Strip profile (.yaml, .yml or .toml)")
	pflag.StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	pflag.IntVarP(&opts.Frames, "frames", "n", 100, "Frames to send, 0 runs until interrupted")
	pflag.Float64Var(&opts.FPS, "fps", 30, "Frames per second, 0 sends back to back")
	pflag.StringVar(&opts.GPIO, "gpio", "", "Bit-bang this periph GPIO pin instead of simulating")
	pflag.StringVar(&opts.SPI, "spi", "", "Send through this periph SPI port instead of simulating")
	pflag.Uint32Var(&opts.SlowHz, "slow-hz", runner.DefaultSlowHz, "Virtual clock of the GPIO output")
	pflag.StringVar(&override.Chipset, "chipset", "", fmt.Sprintf("Override the chipset %v", clockless.Chipsets()))
	pflag.StringVar(&override.Order, "order", "", "Override the color order")
	pflag.IntVar(&override.LEDs, "leds", 0, "Override the LED count")
	pflag.StringVar(&override.Pattern, "pattern", "", "Override the pattern (solid|chase|rainbow)")
	pflag.Parse()

	logger, closeLog := newLogger(levelFlag, logFile)
	defer closeLog()

	strip := config.Default()
	if configPath != "" {
		var err error
		if strip, err = config.Load(configPath); err != nil {
			exit(logger, err, "Failed to load strip profile")
		}
	}
	applyOverrides(&strip, override)
	if err := strip.Validate(); err != nil {
		exit(logger, err, "Invalid strip profile")
	}
	opts.Strip = strip
	opts.Log = logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	opts.Observer = metrics.New(reg, configName(configPath))

	// Prepare to shutdown in a controlled manner
	ctx, cancel := context.WithCancel(context.Background())
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	logger.Info().Str("version", projectVersion).Msgf("Starting %s", projectName)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		sum, err := runner.Run(ctx, opts)
		if err != nil {
			return maskAny(err)
		}
		if sum.Mismatches > 0 {
			return errors.Errorf("%d frames did not decode as sent", sum.Mismatches)
		}
		return nil
	})
	if metricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, logger, metricsAddr, reg, strip) })
	}
	if err := g.Wait(); err != nil {
		exit(logger, err, "Run failed")
	}
}

func newLogger(level, file string) (zerolog.Logger, func()) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	closeFn := func() {}
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    1, // MB
			MaxBackups: 2,
		}
		w = zerolog.MultiLevelWriter(w, lj)
		closeFn = func() { _ = lj.Close() }
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		logger.Warn().Str("level", level).Msg("Unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl), closeFn
}

func applyOverrides(s *config.Strip, o config.Strip) {
	if o.Chipset != "" {
		s.Chipset = o.Chipset
		s.T1, s.T2, s.T3 = 0, 0, 0
	}
	if o.Order != "" {
		s.Order = o.Order
	}
	if o.LEDs != 0 {
		s.LEDs = o.LEDs
	}
	if o.Pattern != "" {
		s.Pattern = o.Pattern
	}
}

func configName(path string) string {
	if path == "" {
		return "default"
	}
	return path
}

// serveMetrics serves /metrics and the active profile on /strip until ctx
// is done.
func serveMetrics(ctx context.Context, log zerolog.Logger, addr string, reg *prometheus.Registry, strip config.Strip) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	e.GET("/strip", func(c echo.Context) error {
		return c.JSON(http.StatusOK, strip)
	})

	errs := make(chan error, 1)
	go func() {
		log.Debug().Str("address", addr).Msg("Serving HTTP")
		errs <- e.Start(addr)
	}()
	select {
	case err := <-errs:
		return errors.Wrap(err, "metrics server")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return maskAny(e.Shutdown(shutdownCtx))
}

func exit(log zerolog.Logger, err error, msg string) {
	log.Error().Stack().Err(err).Msg(msg)
	os.Exit(1)
}
