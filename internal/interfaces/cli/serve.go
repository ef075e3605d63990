package cli

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ReviewPulse/internal/config"
	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// NewServeCmd creates the serve command, which runs the dashboard API.
func NewServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cc.Config.Server.Addr()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loadCtx, cancel := context.WithTimeout(ctx, cc.Timeout)
			app, err := openApp(loadCtx, cc.Config, cc.Logger)
			cancel()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := app.Close(context.Background()); cerr != nil {
					cc.Logger.Warn("Shutdown incomplete", logging.Err(cerr))
				}
			}()

			if cc.ConfigPath != "" {
				watchConfig(cc.ConfigPath, cc.Logger)
			}

			l, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "cannot listen").WithDetail(addr)
			}
			return app.Server().Run(ctx, l)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.host:server.port)")
	return cmd
}

// watchConfig logs configuration edits.  The dataset and engine are built
// once, so changes take effect on the next start.
func watchConfig(path string, log logging.Logger) {
	err := config.Watch(path, func(*config.Config) {
		log.Warn("Configuration file changed; restart to apply", logging.String("path", path))
	}, func(err error) {
		log.Error("Configuration file changed but is invalid", logging.String("path", path), logging.Err(err))
	})
	if err != nil {
		log.Warn("Configuration watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
