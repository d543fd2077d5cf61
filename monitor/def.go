package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"

	"VisionAlertServer/logger"
)

// Counters are created at package init so pipeline code can increment them
// whether or not the metrics server has been started (tests never start it).
var (
	FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frames_processed_total",
		Help: "Total number of frames run through the detection pipeline",
	})
	AlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alerts_emitted_total",
		Help: "Total number of spoken alerts emitted",
	})
	SuppressedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alerts_suppressed_total",
		Help: "Total number of priority detections silenced by an active cooldown",
	})
	DetectorErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "detector_errors_total",
		Help: "Total number of failed calls to the inference collaborator",
	})

	memUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "memory_usage_megabytes",
		Help: "Resident memory in Megabytes",
	})
	cpuUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpu_usage_percent",
		Help: "CPU usage in percent",
	})
)

var (
	pid process.Process
	srv *http.Server
)

func prom(port int) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(memUsage, cpuUsage, FramesTotal, AlertsTotal, SuppressedTotal, DetectorErrors)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.S().Errorf("metrics server ListenAndServe error: %v", err)
		}
	}()
}

func sampleProcess() {
	memInfo, err := pid.MemoryInfo()
	if err == nil {
		memUsage.Set(float64(memInfo.RSS / 1024 / 1024))
	}
	cpuPercent, err := pid.CPUPercent()
	if err == nil {
		cpuUsage.Set(math.Round(cpuPercent*100) / 100)
	}
}

// StartMon serves /metrics on port and samples process mem/cpu every 500ms
// until ctx is cancelled.
func StartMon(port int, ctx context.Context) {
	pid = process.Process{Pid: int32(os.Getpid())}
	prom(port)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
sample:
	for {
		select {
		case <-ctx.Done():
			break sample
		case <-ticker.C:
			sampleProcess()
		}
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.S().Errorf("metrics server Shutdown error: %v", err)
	}
}
