package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"

	"storefront/internal/pkg/apitest"
)

func registerMockCommand(app *kingpin.Application, cmds map[string]runFunc) {
	mock := app.Command("mock", "Serve the seeded in-memory API for local use.")
	addr := mock.Flag("addr", "Listen address (e.g. :3000 or 127.0.0.1:3000)").Default(":3000").Envar("STOREFRONT_MOCK_ADDR").String()
	shutdownTimeout := mock.Flag("shutdown-timeout", "Graceful shutdown timeout (e.g. 10s)").Default("10s").Envar("STOREFRONT_SHUTDOWN_TIMEOUT").String()
	secret := mock.Flag("secret", "HS256 key for OTP tokens").Envar("STOREFRONT_MOCK_SECRET").String()
	cmds[mock.FullCommand()] = func(ctx context.Context, e *env) error {
		to, err := time.ParseDuration(*shutdownTimeout)
		if err != nil || to <= 0 {
			to = 10 * time.Second
		}
		var opts []apitest.Option
		if *secret != "" {
			opts = append(opts, apitest.WithSecret([]byte(*secret)))
		}
		return serveMock(ctx, e.logger, *addr, to, opts...)
	}
}

// serveMock runs the fake API until ctx is done, then shuts it down within
// timeout.
func serveMock(ctx context.Context, logger *slog.Logger, addr string, timeout time.Duration, opts ...apitest.Option) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           apitest.New(apitest.Seeded(), opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("mock api listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down mock api...")

	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("mock api forced to shutdown", slog.Any("err", err))
		return err
	}
	logger.Info("mock api exiting")
	return nil
}
