package cmd

import (
	"context"
	"fmt"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deal-checker/internal/delivery/http"
	"deal-checker/pkg/utils"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the deal-checker HTTP API",
	RunE:  Start,
}

func Start(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	retention := appDep.services.RetentionService
	if err := retention.Start(ctx); err != nil {
		return fmt.Errorf("failed to start retention: %w", err)
	}

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.cfg, appDep.echo, appDep.validator, appDep.services)
	apiServer := NewHTTPServer(ctx, appDep, httpHandler)

	serverErr := make(chan error, 1)
	utils.GoSafe(appDep.log, func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			serverErr <- err
		}
	})

	select {
	case <-ctx.Done():
		appDep.log.Info("Shutting down gracefully")
	case err := <-serverErr:
		appDep.log.Error("HTTP server failed", zap.Error(err))
		<-retention.Stop().Done()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-retention.Stop().Done()
	return apiServer.Stop()
}
