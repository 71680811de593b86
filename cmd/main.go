package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1handlers "github.com/deepgram/insights/internal/api/v1/handlers"
	"github.com/deepgram/insights/internal/config"
	"github.com/deepgram/insights/internal/handlers"
	"github.com/deepgram/insights/internal/logger"
	"github.com/deepgram/insights/internal/services"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

type rootOptions struct {
	addr      string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Serve the sales insights dashboard",
		Long: `Serve the sales insights dashboard: an embedded analytics report, a chat
widget that forwards questions to a remote data agent, and an optional
promotion calendar.

Configuration is read from the environment (AGENT_API_ENDPOINT,
REPORT_EMBED_URL, CALENDAR_EMBED_URL, ...). Flags override it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address, a port or host:port (overrides PORT)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: json or console (overrides LOG_FORMAT)")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *rootOptions) error {
	level := config.GetLogLevel()
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	format := config.GetLogFormat()
	if opts.logFormat != "" {
		format = opts.logFormat
	}
	logger.Init(level, format)

	addr := config.GetListenAddr()
	if opts.addr != "" {
		addr = config.NormalizeListenAddr(opts.addr)
	}

	svcs, err := services.InitializeServices(services.OptionsFromEnv())
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           setupRouter(svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server listen error")
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("Shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
			return err
		}
		if err := svcs.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Services shutdown error")
			return err
		}

		log.Info().Msg("Server shutdown complete")
		return nil
	})

	return eg.Wait()
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.HandlePage(svcs, w, r)
	}).Methods("GET")
	r.HandleFunc("/static/widget.js", handlers.HandleWidgetJS).Methods("GET")
	r.HandleFunc("/healthz", handlers.HandleHealth).Methods("GET")

	v1handlers.RegisterV1Routes(r, svcs)

	return r
}
