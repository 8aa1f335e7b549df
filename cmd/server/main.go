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

	"github.com/joho/godotenv"
	"github.com/railpos/railpos/internal/config"
	"github.com/railpos/railpos/internal/db"
	"github.com/railpos/railpos/internal/events"
	"github.com/railpos/railpos/internal/server"
	"github.com/railpos/railpos/internal/settings"
	"github.com/railpos/railpos/internal/shift"
	"github.com/railpos/railpos/internal/ws"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run catalog DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	if *migrateOnlyFlag {
		if err := db.RunMigrations(cfg); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	catalogDB, err := db.OpenCatalog(cfg)
	if err != nil {
		log.Fatalf("catalog db: %v", err)
	}
	log.Printf("Starting server env=%s port=%s data=%s", cfg.Env, cfg.Port, cfg.DataDir)

	bus := events.NewBus()
	hub := ws.NewHub()
	go hub.Run(bus)

	shifts := shift.NewManager(cfg.ShiftsDir())
	store := settings.NewStore(cfg.DataDir)

	handler := server.New(server.Deps{
		CatalogDB: catalogDB,
		Shifts:    shifts,
		Bus:       bus,
		Hub:       hub,
		Settings:  store,
	})
	srv := &http.Server{Addr: "127.0.0.1:" + cfg.Port, Handler: handler}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
