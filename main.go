package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/DINA18102002/accuknox-scripting/api"
	"github.com/DINA18102002/accuknox-scripting/clients"
	"github.com/DINA18102002/accuknox-scripting/collector"
	"github.com/DINA18102002/accuknox-scripting/conf"
	"github.com/DINA18102002/accuknox-scripting/logsink"
	"github.com/DINA18102002/accuknox-scripting/monitor"
)

func parseConfig() *conf.Config {
	configPath := flag.String("config", "", "path to JSON config file (flags override file values)")
	interval := flag.Duration("interval", 0, "main monitoring interval (e.g. 60s)")
	sampleInterval := flag.Duration("sample-interval", 0, "sampling window for CPU measurement (e.g. 500ms)")
	cpuThreshold := flag.Float64("cpu-threshold", -1, "system CPU usage threshold percent")
	memThreshold := flag.Float64("memory-threshold", -1, "memory usage threshold percent")
	diskThreshold := flag.Float64("disk-threshold", -1, "disk usage threshold percent")
	procCPUThreshold := flag.Float64("process-cpu-threshold", -1, "per-process CPU threshold percent")
	procCountThreshold := flag.Int("process-count-threshold", -1, "total process count threshold")
	diskPaths := flag.String("disk-paths", "", "comma-separated disk paths to monitor")
	endpoints := flag.String("endpoints", "", "comma-separated application URLs to monitor")
	logFile := flag.String("log-file", "", "log file path")
	listenAddr := flag.String("listen", "", "address for the metrics API")
	flag.Parse()

	config := conf.GetDefaultConfig()
	if *configPath != "" {
		loaded, err := conf.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		config = loaded
	}

	if *interval > 0 {
		config.IntervalSeconds = interval.Seconds()
	}
	if *sampleInterval > 0 {
		config.SampleIntervalSeconds = sampleInterval.Seconds()
	}
	if *cpuThreshold >= 0 {
		config.CPUThreshold = *cpuThreshold
	}
	if *memThreshold >= 0 {
		config.MemoryThreshold = *memThreshold
	}
	if *diskThreshold >= 0 {
		config.DiskThreshold = *diskThreshold
	}
	if *procCPUThreshold >= 0 {
		config.ProcessCPUThreshold = *procCPUThreshold
	}
	if *procCountThreshold >= 0 {
		config.ProcessCountThreshold = *procCountThreshold
	}
	if *diskPaths != "" {
		config.MonitoredDisks = splitList(*diskPaths)
	}
	if *endpoints != "" {
		config.MonitoredEndpoints = splitList(*endpoints)
	}
	if *logFile != "" {
		config.LogFilePath = *logFile
	}
	if *listenAddr != "" {
		config.ListenAddr = *listenAddr
	}

	return config
}

func splitList(csv string) []string {
	var items []string
	for _, item := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func main() {
	config := parseConfig()

	logger, closer, err := logsink.New(config.LogFilePath, config.MaxLogSizeBytes, config.LogBackupCount, zerolog.InfoLevel)
	if err != nil {
		log.Fatalf("failed to open log file %s: %v", config.LogFilePath, err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ssc := collector.NewSystemStatsCollector(logger)
	pmc := collector.NewProcessStatsCollector(logger)
	ssm := monitor.NewSystemStatsMonitor(config, ssc, pmc, logger)

	endpointClient := clients.NewEndpointClient(config.EndpointTimeout())
	um := monitor.NewUptimeMonitor(config, endpointClient, logger)

	mux := http.NewServeMux()
	api.RegisterHandlers(mux, ssm, um)
	server := &http.Server{Addr: config.ListenAddr, Handler: mux}

	logger.Info().Msg("starting watchdog, press Ctrl+C to stop")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ssm.Run(gctx)
	})
	g.Go(func() error {
		return um.Run(gctx)
	})
	g.Go(func() error {
		logger.Info().Str("addr", config.ListenAddr).Msg("metrics api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("watchdog exited with error")
	}
	logger.Info().Msg("watchdog stopped")
}
