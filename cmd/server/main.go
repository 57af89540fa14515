package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yegors/spotten/internal/api"
	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/internal/config"
	"github.com/yegors/spotten/internal/dropzone"
	"github.com/yegors/spotten/internal/storage/sqlite"
	"github.com/yegors/spotten/internal/websocket"
	"github.com/yegors/spotten/pkg/logger"
)

var (
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Spotten server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	db, err := sqlite.Open(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to open database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	settingsStorage, err := sqlite.NewSettingsStorage(db, log)
	if err != nil {
		log.Error("Failed to create settings storage", logger.Error(err))
		os.Exit(1)
	}

	catalog := dropzone.FromConfig(cfg.Dropzones)
	log.Info("Loaded dropzones", logger.Int("count", catalog.Len()))

	briefingService := briefing.NewService(catalog, cfg.Calculator.Overrides(), log)

	// Live preview
	var wsServer *websocket.Server
	if cfg.Preview.Enabled {
		wsServer = websocket.NewServer(websocket.Options{
			SendBufferSize:  cfg.Preview.SendBufferSize,
			MaxMessageBytes: cfg.Preview.MaxMessageBytes,
		}, log)
		websocket.NewPreviewHandler(wsServer, briefingService, log)
		go wsServer.Run()
	} else {
		log.Info("Live preview disabled in configuration")
	}

	router := api.NewRouter(briefingService, settingsStorage, cfg, log, wsServer, Version)
	handler := router.Routes()

	var servers []*http.Server
	allPorts := append([]int{cfg.Server.Port}, cfg.Server.AdditionalPorts...)

	log.Info("Configured listener ports", logger.Any("ports", allPorts))

	for _, port := range allPorts {
		server := &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, port),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		}
		servers = append(servers, server)

		go func(s *http.Server) {
			log.Info("Starting HTTP server", logger.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error on startup", logger.String("addr", s.Addr), logger.Error(err))
			}
		}(server)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	if wsServer != nil {
		log.Info("Stopping live preview...")
		wsServer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown error", logger.String("addr", srv.Addr), logger.Error(err))
			} else {
				log.Info("HTTP server shutdown complete", logger.String("addr", srv.Addr))
			}
		}(s)
	}
	wg.Wait()

	log.Info("Server fully stopped")
}
