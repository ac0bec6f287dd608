package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"owcs-analyzer/internal/config"
	"owcs-analyzer/internal/logging"
	"owcs-analyzer/internal/viewer"
)

func main() {
	config.LoadEnv(config.EnvPaths...)

	cfg, err := config.ParseViewer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.New(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	srv, err := viewer.NewServer(cfg.Dir, log)
	if err != nil {
		log.Fatalf("Failed to create viewer: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := viewer.SetupSignalHandler(log, nil)

	log.Infof("Viewer running at http://localhost:%s (serving %s)", cfg.Port, cfg.Dir)
	if err := viewer.Serve(ctx, httpServer, log); err != nil {
		log.Fatalf("Viewer stopped: %v", err)
	}
}
