package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/fakegame/pkg/api"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/reconciler"
	"github.com/cbodonnell/fakegame/pkg/version"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the developer HTTP API",
		Long: `Serve the entitlement record and the simulated store over HTTP.

UI signals are streamed as JSON on the /events websocket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				rootOpts.Config.APIPort = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 9090, "port to listen on (env FAKEGAME_API_PORT)")
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions) error {
	log.Info("Starting fakegame API version %s", version.Get())

	events := api.NewEventHub()
	a, err := openApp(ctx, opts.Config, reconciler.Notifiers{logNotifier{}, events})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.reconciler.LoadCatalog(ctx); err != nil {
		// Slots stay unavailable until the next start. Reads and consumption still work.
		log.Error("Failed to load product catalog: %v", err)
	}

	server := api.NewAPIServer(api.NewAPIServerOptions{
		Port:       opts.Config.APIPort,
		Reconciler: a.reconciler,
		Repository: a.repository,
		Events:     events,
	})
	go server.Start()

	<-ctx.Done()
	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}
