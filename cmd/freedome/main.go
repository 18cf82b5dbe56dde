// package main provides a command line interface for starting the freedome
// server: the REST API under /api, metrics, and the web client.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/firestore"
	"github.com/freedome/freedome/jobs"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/maps"
	"github.com/freedome/freedome/maps/cache"
	"github.com/freedome/freedome/pg"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/rest"
	"github.com/freedome/freedome/service"
	"github.com/freedome/freedome/storage"
	"github.com/freedome/freedome/web"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	var (
		adminUIDs         = flag.String("admin-uids", os.Getenv("ADMIN_UIDS"), "comma-separated list of firebase uids that have admin privileges")
		backfillSpec      = flag.String("backfill-cron", envOr("BACKFILL_CRON", jobs.DefaultBackfillSpec), "cron spec for geocoding businesses without coordinates, empty string disables it")
		bucket            = flag.String("bucket", os.Getenv("GCS_BUCKET"), "Cloud Storage bucket for uploaded logos")
		cacheTTL          = flag.Duration("geocode-cache-ttl", envDuration("GEOCODE_CACHE_TTL", cache.DefaultTTL), "how long geocoded addresses are cached")
		corsOrigins       = flag.String("cors-origins", os.Getenv("CORS_ORIGINS"), "comma-separated list of request origins where CORS requests are allowed")
		credentials       = flag.String("credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "Google service account JSON file, empty for application default credentials")
		dbURL             = flag.String("db", os.Getenv("DB"), "a database connection URL for the PostgreSQL database")
		environment       = flag.String("environment", os.Getenv("ENV"), "development or production, controls log verbosity")
		firebaseProjectID = flag.String("project-id", envOr("FIREBASE_PROJECT_ID", "freedome"), "The firebase project-id used for auth and firestore")
		mapsKey           = flag.String("maps-key", os.Getenv("MAPS_API_KEY"), "Google Maps Platform API key")
		mapsQPS           = flag.Float64("maps-qps", envFloat("MAPS_QPS", 5), "maximum maps requests per second")
		port              = flag.Int("port", envInt("PORT", 8080), "the port where the server listens for connections")
		redisURL          = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL for the geocode cache, eg redis://localhost:6379/0")
		staticDir         = flag.String("static", envOr("STATIC_DIR", "build"), "directory holding the built web client")
		store             = flag.String("store", envOr("STORE", "firestore"), "record store: firestore or postgres")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logger *zap.Logger
	var err error
	if *environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	var opts []option.ClientOption
	if *credentials != "" {
		opts = append(opts, option.WithCredentialsFile(*credentials))
	}
	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID: *firebaseProjectID,
	}, opts...)
	if err != nil {
		logger.Fatal("init firebase failed", zap.Error(err))
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Fatal("init firebase auth failed", zap.Error(err))
	}
	jwtProvider := &auth.FirebaseProvider{
		AuthClient: authClient,
		AdminUIDs:  splitList(*adminUIDs),
	}

	svc := &service.Service{
		Identity: jwtProvider,
	}

	switch *store {
	case "firestore":
		client, err := firebaseApp.Firestore(ctx)
		if err != nil {
			logger.Fatal("init firestore failed", zap.Error(err))
		}
		defer client.Close()

		svc.UserStore = &firestore.UserStore{Client: client}
		svc.OfferStore = &firestore.OfferStore{Client: client}
		svc.EventStore = &firestore.EventStore{Client: client}
		svc.ReviewStore = &firestore.ReviewStore{Client: client}
		svc.NotificationStore = &firestore.NotificationStore{Client: client}

	case "postgres":
		db, err := sql.Open("postgres", *dbURL)
		if err != nil {
			logger.Fatal("open postgres failed", zap.Error(err))
		}
		db.SetMaxOpenConns(5)

		if err := pg.Init(ctx, db); err != nil {
			logger.Fatal("init postgres stores failed", zap.Error(err))
		}

		svc.UserStore = &pg.UserStore{DB: db}
		svc.OfferStore = &pg.OfferStore{DB: db}
		svc.EventStore = &pg.EventStore{DB: db}
		svc.ReviewStore = &pg.ReviewStore{DB: db}
		svc.NotificationStore = &pg.NotificationStore{DB: db, URL: *dbURL}

	default:
		logger.Fatal("unknown store", zap.String("store", *store))
	}

	if *mapsKey != "" {
		mapsClient, err := maps.NewClient(*mapsKey, *mapsQPS)
		if err != nil {
			logger.Fatal("maps client", zap.Error(err))
		}
		svc.Maps = mapsClient

		if *redisURL != "" {
			redisOpts, err := redis.ParseURL(*redisURL)
			if err != nil {
				logger.Fatal("bad redis url", zap.Error(err))
			}
			redisClient := redis.NewClient(redisOpts)
			defer redisClient.Close()

			svc.Geocoder = &cache.GeocodeCache{
				Client: redisClient,
				Next:   mapsClient,
				TTL:    *cacheTTL,
			}
		}
	} else {
		logger.Warn("no maps key, geocoding and place lookups are disabled")
	}

	if *bucket != "" {
		gcs, err := storage.NewGCS(ctx, *bucket, *credentials)
		if err != nil {
			logger.Fatal("init cloud storage failed", zap.Error(err))
		}
		defer gcs.Close()
		svc.Storage = gcs
	} else {
		logger.Warn("no bucket, logo uploads are disabled")
	}

	if *backfillSpec != "" && svc.Maps != nil {
		scheduler, err := jobs.NewScheduler(*backfillSpec, svc, logger)
		if err != nil {
			logger.Fatal("bad backfill schedule", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop(context.Background())
	}

	origins := splitList(*corsOrigins)

	api := rest.New(svc, jwtProvider)
	if nh, ok := api.NotificationsHandler.(*rest.NotificationsHandler); ok {
		nh.AllowedOrigins = origins
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api))
	mux.Handle("/metrics", prom.Handler())
	mux.Handle("/", web.New(*staticDir, jwtProvider))

	var handler http.Handler = mux
	handler = log.WrapHandler(handler, logger)
	if len(origins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}),
			handlers.AllowedOrigins(origins),
			handlers.AllowCredentials(),
		)(handler)
	}

	addr := fmt.Sprint(":", *port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", addr), zap.String("store", *store))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
