/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pitchdeck-be/handler"
	"github.com/tieubaoca/pitchdeck-be/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server and the deck scheduler",
	Long:  `Serves the HTTP API and runs the background deck pipeline in the same process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		hub := service.NewProgressHub()
		pipeline, err := a.newPipeline(ctx, hub)
		if err != nil {
			return err
		}
		scheduler := a.newScheduler(pipeline)

		fileService, err := service.NewFileService(a.cfg.UploadDir, a.cfg.MaxUploadBytes)
		if err != nil {
			return err
		}
		startupService := service.NewStartupService(a.startups)
		deckService := service.NewDeckService(a.decks, a.startups, fileService)
		wsService := service.NewWebSocketService(hub, a.logger.Named("websocket"))

		router := handler.SetupRouter(handler.Handlers{
			Cors:    handler.NewCorsHandler(""),
			Startup: handler.NewStartupHandler(startupService),
			Deck:    handler.NewDeckHandler(deckService, wsService),
		}, a.cfg.MaxUploadBytes)

		server := &http.Server{
			Addr:    ":" + a.cfg.Port,
			Handler: router,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.logger.Info("starting server", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			a.logger.Error("server stopped with error", zap.Error(err))
			return err
		}
		a.logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
