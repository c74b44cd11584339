package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kingpin "github.com/alecthomas/kingpin/v2"

	"storefront/config"
	"storefront/internal/pkg/client/storefront"
	"storefront/internal/pkg/render"
)

var (
	app = kingpin.New("storefront", "Storefront list and account client.")

	logFormat  = app.Flag("log-format", "Log format").Default("text").Envar("STOREFRONT_LOG_FORMAT").Enum("text", "json")
	logOutput  = app.Flag("log-output", "Log output destination").Default("stderr").Envar("STOREFRONT_LOG_OUTPUT").Enum("stdout", "stderr", "file")
	logFile    = app.Flag("log-file", "Log file path (used when --log-output=file)").Envar("STOREFRONT_LOG_FILE").String()
	debug      = app.Flag("debug", "Enable debug logging").Envar("STOREFRONT_DEBUG").Bool()
	configFile = app.Flag("config", "Path to YAML config file").Short('c').Default("storefront.yaml").Envar("STOREFRONT_CONFIG").String()
	baseURL    = app.Flag("base-url", "API base URL, overrides api.baseURL").Envar("STOREFRONT_BASE_URL").String()
	token      = app.Flag("token", "Bearer token, overrides api.token").Envar("STOREFRONT_TOKEN").String()
)

func main() {
	app.HelpFlag.Short('h')
	cmds := registerCommands(app)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	// Internal helper to create configured logger
	logger, cleanup, err := newLogger(*logOutput, *logFormat, *logFile, level)
	if err != nil {
		// Fallback to stderr if logger setup fails
		fmt.Fprintf(os.Stderr, "failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, ok := cmds[command]
	if !ok {
		logger.Error("unknown command", slog.String("command", command))
		os.Exit(1)
	}

	// mock serves the fake API and needs no client
	if command == "mock" {
		if err := run(ctx, &env{logger: logger}); err != nil {
			logger.Error("mock server failed", slog.Any("err", err))
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(*configFile, *baseURL, *token)
	if err != nil {
		logger.Error("failed to load config", slog.String("path", *configFile), slog.Any("err", err))
		os.Exit(1)
	}

	// Init storefront client and set as default
	cli, err := storefront.New(cfg.API, storefront.WithLogger(logger))
	if err != nil {
		logger.Error("failed to initialize storefront client", slog.Any("err", err))
		os.Exit(1)
	}
	storefront.SetDefault(cli)

	e := &env{
		cfg:     cfg,
		logger:  logger,
		printer: render.New(os.Stdout),
		in:      os.Stdin,
		metrics: logMetrics{logger: logger},
	}
	if err := run(ctx, e); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			os.Exit(130)
		}
		logger.Error("command failed", slog.String("command", command), slog.Any("err", err))
		os.Exit(1)
	}
}

// loadConfig reads path, falling back to defaults when the file is missing and
// a base URL was given on the command line.
func loadConfig(path, baseURL, token string) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && baseURL != "":
		cfg = config.Default(baseURL)
	default:
		return nil, err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if token != "" {
		cfg.API.Token = token
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(logOutput, logFormat, logFile string, level slog.Level) (*slog.Logger, func(), error) {
	var w io.Writer
	var closer io.Closer
	switch logOutput {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	case "file":
		if logFile == "" {
			return nil, nil, fmt.Errorf("--log-file is required when --log-output=file")
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closer = f
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", logOutput)
	}

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, nil, fmt.Errorf("unsupported log format: %s", logFormat)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
	return logger, cleanup, nil
}
