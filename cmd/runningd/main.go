// Command runningd serves the accumulation API: submit value streams,
// read back running series, final values and charts.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fold-data/running.report/internal/api"
	"github.com/fold-data/running.report/internal/config"
	"github.com/fold-data/running.report/internal/db"
	"github.com/fold-data/running.report/internal/timeutil"
	"github.com/fold-data/running.report/internal/version"
)

var (
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbPath     = flag.String("db", "", "Path to the sqlite database (overrides config)")
	configPath = flag.String("config", "", "Path to a JSON config file")
	devMode    = flag.Bool("dev", false, "Run in dev mode (mounts /debug admin routes)")
	migrate    = flag.Bool("migrate", false, "Run pending migrations and exit")
)

func main() {
	flag.Parse()

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}
	path := cfg.GetDBPath()
	if *dbPath != "" {
		path = *dbPath
	}

	database, err := db.NewDB(path, timeutil.RealClock{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if *migrate {
		if err := database.MigrateUp(cfg.GetMigrationsDir()); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		version, dirty, err := database.MigrateVersion(cfg.GetMigrationsDir())
		if err != nil {
			log.Fatalf("failed to read migration version: %v", err)
		}
		log.Printf("schema at version %d (dirty=%v)", version, dirty)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	if *devMode {
		if err := database.AttachAdminRoutes(mux); err != nil {
			log.Fatalf("failed to attach admin routes: %v", err)
		}
	}
	mux.Handle("/", api.LoggingMiddleware(api.NewServer(database, cfg).ServeMux()))

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.Printf("running.report %s listening on %s (db=%s)", version.String(), addr, path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		os.Exit(1)
	}
	log.Printf("graceful shutdown complete")
}
