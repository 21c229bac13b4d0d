package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/pkg/metrics"
	"github.com/rustyeddy/fxrisk/server"
	"github.com/rustyeddy/fxrisk/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment API over HTTP",
	Long: `Start the HTTP API:

  POST /api/v1/var                 assess a receivable
  GET  /api/v1/assessments         list journaled assessments
  GET  /api/v1/assessments/:id     fetch one assessment
  GET  /metrics                    Prometheus metrics
  GET  /healthz                    liveness

Example:
  fxvar serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	a, store, err := service.New(cfg, log, m)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.NewHandler(a, store), server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, log, m)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
