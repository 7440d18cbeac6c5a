package cli

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/omnieval/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the viewer API over HTTP",
	Long: `Serve loads the data directory and exposes it read-only over HTTP.

Routes:
  GET /api/data                                  fixed bundle for the viewer
  GET /api/articles                              article keys and sources
  GET /api/articles/{key}/{source}/panel         scoring panel (?kind=&section=&sentence=)
  GET /api/articles/{key}/{source}/report        whole-article report
  GET /api/requirements                          catalog (?q= to search)
  GET /api/requirements/{id}                     one requirement
  GET /healthz, /metrics

Example:
  omnieval serve
  omnieval serve --addr :9090 --data-dir ./data`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, p, logger, reg).Run(ctx)
}
