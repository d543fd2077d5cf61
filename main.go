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

	"go.uber.org/zap"

	"VisionAlertServer/config"
	"VisionAlertServer/detector"
	"VisionAlertServer/imaging"
	"VisionAlertServer/logger"
	"VisionAlertServer/monitor"
	"VisionAlertServer/pipeline"
	"VisionAlertServer/publisher"
)

func main() {
	if err := logger.InitProduction(); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return
	}
	defer logger.Sync()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.S().Errorf("Failed to load config: %v", err)
		return
	}
	logger.Log().Info("configuration loaded",
		zap.Int("httpPort", cfg.HTTPPort),
		zap.Int("metricsPort", cfg.MetricsPort),
		zap.String("detectorURL", cfg.DetectorURL),
		zap.Int("detectorWorkers", cfg.DetectorWorkers),
		zap.Float64("confidenceThreshold", cfg.ConfidenceThreshold),
		zap.Float64("cooldownSeconds", cfg.CooldownSeconds),
		zap.Strings("priorityObjects", cfg.PriorityObjects))

	remote := detector.NewRemote(cfg.DetectorURL, cfg.DetectorTimeout())
	pool := detector.NewPool(remote, cfg.DetectorWorkers)
	defer pool.Close()

	pipe := pipeline.New(cfg, imaging.NewProcessor(cfg.RotateToPortrait), pool)

	if cfg.Kafka.Enabled {
		pub, err := publisher.NewKafka(cfg.Kafka)
		if err != nil {
			logger.S().Errorf("Failed to initialize kafka publisher: %v", err)
			return
		}
		defer pub.Close()
		pipe.SetAlertSink(pub)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go monitor.StartMon(cfg.MetricsPort, ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: newServer(cfg, pipe).router(),
	}
	go func() {
		logger.S().Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.S().Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Log().Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.S().Errorf("HTTP server shutdown error: %v", err)
	}
	logger.Log().Info("safely exited")
}
