package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/roadsketch/roadsketch/pkg/cache"
	"github.com/roadsketch/roadsketch/pkg/monitoring"
	"github.com/roadsketch/roadsketch/pkg/osm"
	"github.com/roadsketch/roadsketch/pkg/registration"
	"github.com/roadsketch/roadsketch/pkg/roads"
	httpserver "github.com/roadsketch/roadsketch/pkg/server"
	"github.com/roadsketch/roadsketch/pkg/tools"
	"github.com/roadsketch/roadsketch/pkg/tracing"
	ver "github.com/roadsketch/roadsketch/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	userAgent       string

	// HTTP API flags
	httpAddr     string
	apiRateLimit float64
	apiRateBurst int

	// MCP flags
	enableMCP bool

	// Monitoring flags
	enableMonitoring bool
	monitoringAddr   string

	// Registration flags
	enableRegistration bool
	registryURL        string
	serviceURL         string
	internalURL        string

	// Result cache
	cacheSize int
	cacheTTL  time.Duration

	// Rate limits for each upstream service
	nominatimRPS   float64
	nominatimBurst int
	overpassRPS    float64
	overpassBurst  int
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&userAgent, "user-agent", osm.DefaultUserAgent, "User-Agent string for OSM API requests")

	// HTTP API flags
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP API server address")
	flag.Float64Var(&apiRateLimit, "api-rps", 10, "Per-client API rate limit in requests per second")
	flag.IntVar(&apiRateBurst, "api-burst", 20, "Per-client API rate limit burst size")

	// MCP flags
	flag.BoolVar(&enableMCP, "enable-mcp", false, "Serve MCP tools over stdio instead of the HTTP API")

	// Monitoring flags
	flag.BoolVar(&enableMonitoring, "enable-monitoring", true, "Enable Prometheus metrics and health endpoints")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Monitoring server address")

	// Registration flags
	flag.BoolVar(&enableRegistration, "enable-registration", false, "Enable registration with a service registry")
	flag.StringVar(&registryURL, "registry-url", "", "Service registry URL")
	flag.StringVar(&serviceURL, "service-url", "", "External URL where this service is accessible")
	flag.StringVar(&internalURL, "internal-url", "", "Internal URL for container environments")

	// Result cache flags
	flag.IntVar(&cacheSize, "cache-size", roads.DefaultCacheSize, "Maximum number of cached extraction results")
	flag.DurationVar(&cacheTTL, "cache-ttl", roads.DefaultCacheTTL, "Time-to-live for cached extraction results")

	// Nominatim rate limits
	flag.Float64Var(&nominatimRPS, "nominatim-rps", 1.0, "Nominatim rate limit in requests per second")
	flag.IntVar(&nominatimBurst, "nominatim-burst", 1, "Nominatim rate limit burst size")

	// Overpass rate limits
	flag.Float64Var(&overpassRPS, "overpass-rps", 1.0, "Overpass rate limit in requests per second")
	flag.IntVar(&overpassBurst, "overpass-burst", 1, "Overpass rate limit burst size")
}

func main() {
	flag.Parse()

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry tracing
	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		// Continue without tracing - it's not critical
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()

		if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	// Update global user agent if specified
	if userAgent != osm.DefaultUserAgent {
		osm.SetUserAgent(userAgent)
	}

	// Update upstream rate limits if specified
	if nominatimRPS != 1.0 || nominatimBurst != 1 {
		osm.UpdateNominatimRateLimits(nominatimRPS, nominatimBurst)
	}
	if overpassRPS != 1.0 || overpassBurst != 1 {
		osm.UpdateOverpassRateLimits(overpassRPS, overpassBurst)
	}

	logger.Info("starting roadsketch",
		"version", ver.BuildVersion,
		"log_level", logLevel.String(),
		"user_agent", osm.GetUserAgent(),
		"http_addr", httpAddr,
		"mcp_enabled", enableMCP,
		"monitoring_enabled", enableMonitoring,
		"monitoring_addr", monitoringAddr,
		"cache_size", cacheSize,
		"cache_ttl", cacheTTL)

	resultCache, err := cache.New[*roads.ExtractionResult](cacheSize, cacheTTL)
	if err != nil {
		logger.Error("failed to create result cache", "error", err)
		os.Exit(1)
	}

	pipeline := roads.NewPipeline(
		roads.WithLogger(logger),
		roads.WithCache(resultCache),
	)

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Initialize health checker and monitoring server
	if enableMonitoring {
		healthChecker := monitoring.NewHealthChecker(monitoring.ServiceName, ver.BuildVersion)
		defer healthChecker.Shutdown()

		setupMonitoringHooks()
		startExternalServiceMonitoring(healthChecker, logger)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", healthChecker.HealthHandler())
		mux.HandleFunc("/ready", healthChecker.ReadinessHandler())
		mux.HandleFunc("/live", healthChecker.LivenessHandler())

		monitoringServer := &http.Server{
			Addr:              monitoringAddr,
			Handler:           mux,
			ReadHeaderTimeout: 30 * time.Second, // Prevent Slowloris attacks
		}

		g.Go(func() error {
			logger.Info("starting monitoring server", "addr", monitoringAddr)
			if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return monitoringServer.Shutdown(shutdownCtx)
		})
	}

	// Initialize registration client if enabled
	if enableRegistration {
		svcURL := serviceURL
		if svcURL == "" {
			svcURL = fmt.Sprintf("http://localhost%s", httpAddr)
		}

		regCfg := registration.Config{
			RegistryURL:  registryURL,
			ServiceName:  monitoring.ServiceName,
			ServiceURL:   svcURL,
			HealthURL:    fmt.Sprintf("http://localhost%s/health", monitoringAddr),
			InternalURL:  internalURL,
			Version:      ver.BuildVersion,
			Capabilities: []string{"extraction", "rendering"},
			Tools:        tools.NewRegistry(logger, pipeline).GetToolNames(),
		}

		regClient := registration.NewClient(regCfg, logger)
		regClient.Start(ctx)
		defer regClient.Stop()

		logger.Info("registration client initialized",
			"registry_url", registryURL,
			"service_url", svcURL)
	}

	if enableMCP {
		// MCP stdio mode: tools over stdin/stdout, no HTTP API.
		registry := tools.NewRegistry(logger, pipeline)
		mcpServer := server.NewMCPServer("roadsketch", ver.BuildVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		)
		registry.RegisterTools(mcpServer)

		g.Go(func() error {
			logger.Info("serving MCP tools over stdio", "tools", registry.GetToolNames())
			return server.ServeStdio(mcpServer)
		})
	} else {
		cfg := httpserver.Config{
			Addr:           httpAddr,
			RateLimit:      rate.Limit(apiRateLimit),
			RateBurst:      apiRateBurst,
			RequestTimeout: 2 * time.Minute,
		}
		api := httpserver.NewServer(pipeline, logger, cfg)

		g.Go(func() error {
			return api.ListenAndServe(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupMonitoringHooks connects the OSM client to Prometheus metrics.
func setupMonitoringHooks() {
	osm.SetMonitoringHooks(&osm.MonitoringHooks{
		OnRequest: func(service, operation string) {
			monitoring.RecordExternalServiceRequest(service, operation, 0, false) // Start request
		},
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			monitoring.RecordExternalServiceRequest(service, operation, duration, success)
		},
		OnRateLimit: func(service string, waitTime time.Duration) {
			monitoring.RecordRateLimitWait(service, waitTime)
			monitoring.RecordRateLimitExceeded(service)
		},
		OnError: func(service, errorType string) {
			monitoring.RecordError(service, errorType)
		},
	})
}

// startExternalServiceMonitoring starts connection monitors for the
// upstream OSM services.
func startExternalServiceMonitoring(healthChecker *monitoring.HealthChecker, logger *slog.Logger) {
	nominatimMonitor := monitoring.NewConnectionMonitor(
		"nominatim",
		healthChecker,
		osm.CheckNominatimHealth,
		30*time.Second,
	)
	nominatimMonitor.Start()

	overpassMonitor := monitoring.NewConnectionMonitor(
		"overpass",
		healthChecker,
		osm.CheckOverpassHealth,
		30*time.Second,
	)
	overpassMonitor.Start()

	logger.Info("started external service monitoring",
		"services", []string{"nominatim", "overpass"},
		"check_interval", "30s")
}
