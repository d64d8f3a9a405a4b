package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dshills/scrub/internal/config"
	"github.com/dshills/scrub/internal/httpapi"
	"github.com/dshills/scrub/internal/log"
	"github.com/dshills/scrub/internal/observability"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr      string
	serveRateLimit int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP redaction service",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if serveAddr != "" {
			overrides["server.addr"] = serveAddr
		}
		if cmd.Flags().Changed("rate-limit") {
			overrides["server.rateLimit"] = fmt.Sprint(serveRateLimit)
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg); err != nil {
			runtimeError("%v", err)
		}
		return nil
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := log.WithComponent("serve")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(cfg.Server.MetricsNamespace, reg)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.New(cfg, metrics, reg).Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Bool("redact_extension_urls", cfg.RedactExtensionURLs).
			Int("rate_limit", cfg.Server.RateLimit).
			Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", 0, "Requests per minute per client IP, 0 disables")
	serveCmd.Flags().BoolVar(&flagKeepExtensionURLs, "keep-extension-urls", false, "Leave moz-extension:// URLs untouched by default")
}
