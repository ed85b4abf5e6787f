package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MDWio/ohif-viewer/cmd/flags"
	"github.com/MDWio/ohif-viewer/common"
	"github.com/MDWio/ohif-viewer/httpserver"
	"github.com/MDWio/ohif-viewer/metrics"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "loader-server",
		Usage:   "Serve the DICOM instance loader API",
		Version: common.Version,
		Flags:   append(append(append([]cli.Flag{}, flags.LogFlags...), flags.ServerFlags...), flags.LoaderFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger)

			stack, err := flags.SetupLoader(cCtx, logger)
			if err != nil {
				logger.Error("Failed to set up loader", "err", err)
				return err
			}

			var metricsSrv *metrics.MetricsServer
			var recorder httpserver.Recorder
			if cfg.MetricsAddr != "" {
				metricsSrv, err = metrics.New(common.PackageName, cfg.MetricsAddr)
				if err != nil {
					logger.Error("Failed to create metrics server", "err", err)
					return err
				}
				if err := metricsSrv.RegisterImageCache(stack.Images); err != nil {
					logger.Error("Failed to register image cache metrics", "err", err)
					return err
				}
				recorder = metricsSrv
			}

			handler := httpserver.NewHandler(stack.Resolver, stack.Files, recorder, cfg, logger)
			server, err := httpserver.New(cfg, handler, stack.Store, metricsSrv)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
