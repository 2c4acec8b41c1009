package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"

	"property-search/internal/config"
	"property-search/internal/handlers"
	"property-search/internal/logging"
	"property-search/internal/markers"
	"property-search/internal/models"
	"property-search/internal/query"
	"property-search/internal/ratelimit"
	"property-search/internal/scheduler"
	"property-search/internal/search"
	"property-search/internal/session"
	"property-search/internal/upstream"
	"property-search/internal/viewport"
)

func main() {
	configPath := flag.String("config", getEnv("CONFIG_PATH", "config/config.yaml"), "path to the YAML config file")
	flag.Parse()

	// Load configuration
	appConfig, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", *configPath, err)
	}

	if appConfig.Logging.File != "" {
		rw, out, err := logging.Setup(appConfig.Logging.File, int64(appConfig.Logging.MaxSizeMB)<<20)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer rw.Close()
		gin.DefaultWriter = out
		gin.DefaultErrorWriter = out
	}
	if strings.EqualFold(appConfig.Logging.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	metric, err := markers.ParseMetric(appConfig.Map.Metric)
	if err != nil {
		log.Fatalf("Invalid map.metric: %v", err)
	}
	sort := models.SortOrder(appConfig.Session.Sort)
	if !sort.Valid() {
		log.Fatalf("Invalid session.sort %q", appConfig.Session.Sort)
	}

	// Listings and opinions collaborators
	breaker := upstream.NewCircuitBreaker(appConfig.Upstream.FailureThreshold, appConfig.Upstream.GetResetTimeout())
	client := upstream.NewClient(appConfig.Upstream.ListingsURL, appConfig.Upstream.GetTimeout(), breaker)

	initial := query.New(appConfig.Session.PageSize, sort, appConfig.Session.IncludeHistory)

	var (
		listings  session.ListingsFetcher = client
		forwarder handlers.Forwarder      = client
	)
	if appConfig.Upstream.Backend == config.BackendMeilisearch {
		ms := appConfig.Search.Meilisearch
		searchClient := search.NewSearchClient(ms.Host, ms.APIKey, ms.Index)
		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
		listings = searchClient
		forwarder = handlers.FetcherForwarder{Fetcher: searchClient, Base: initial}
		log.Printf("Using Meilisearch listings backend at %s (index %s)", ms.Host, ms.Index)
	} else {
		log.Printf("Using listings service at %s", appConfig.Upstream.ListingsURL)
	}

	policy := models.CoordinatePolicy{ZeroIsUnset: appConfig.Map.ZeroCoordinatesUnset}
	store := session.NewStore(session.Options{
		Initial: initial,
		Viewport: viewport.Config{
			DefaultCenter: models.LatLng{Lat: appConfig.Map.DefaultLat, Lng: appConfig.Map.DefaultLng},
			DefaultZoom:   appConfig.Map.DefaultZoom,
			Coordinates:   policy,
		},
		Markers: markers.Colorizer{
			Metric:      metric,
			Clustered:   appConfig.Map.Clustered,
			Coordinates: policy,
		},
		Highlight:     appConfig.Session.GetHighlight(),
		OpinionsLimit: appConfig.Session.OpinionsLimit,
	}, listings, client)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// Idle session sweeper, also pruning rate limiter clients
	appScheduler := scheduler.NewScheduler(store, appConfig.Session.SweepCron, appConfig.Session.GetIdleTTL())
	appScheduler.AddTask("rate limit clients", rateLimiter.Prune)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	if appConfig.Logging.LogRequests {
		r.Use(gin.Logger())
	}

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	handlers.Mount(r, handlers.Routes{
		Sessions:  handlers.NewSessionHandler(store, appConfig.Upstream.GetTimeout()),
		Proxy:     handlers.NewProxyHandler(forwarder, appConfig.Upstream.GetTimeout()),
		Health:    handlers.NewHealthHandler(store, breaker, rateLimiter),
		RateLimit: ratelimit.Middleware(rateLimiter),
	})

	srv := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
