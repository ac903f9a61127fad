package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"arena-server/game"
)

func main() {
	defaults := DefaultServerConfig()
	addr := flag.String("addr", defaults.Addr, "HTTP listen address")
	clientDir := flag.String("client", "", "Path to client directory (default: ./public)")
	dbPath := flag.String("db", defaults.DBPath, "SQLite database path")
	envFile := flag.String("env", ".env", "Optional .env file with ARENA_* overrides")
	flag.Parse()

	if err := LoadEnvFile(*envFile); err != nil {
		log.Fatalf("config: %v", err)
	}
	defaults.Addr = *addr
	defaults.DBPath = *dbPath
	cfg, err := ApplyEnv(defaults, os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *clientDir == "" {
		exe, _ := os.Executable()
		*clientDir = filepath.Join(filepath.Dir(exe), "public")
		// Fallback for development
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = "public"
		}
	}
	cfg.ClientDir = *clientDir

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	scores, err := NewHighScores(db, maxHighScores)
	if err != nil {
		log.Fatalf("high scores: %v", err)
	}
	auth, err := NewAuth(db, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		log.Fatalf("admin auth: %v", err)
	}

	world := game.NewWorld(cfg.Game, cfg.Seed)
	g := NewGame(world, scores)
	hub := NewHub(g, auth, scores)
	go hub.Run()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go g.Run(ctx)

	mux := SetupRoutes(hub, cfg.ClientDir, cfg.PublicURL)
	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		log.Printf("Serving client files from %s", cfg.ClientDir)
		log.Printf("World %vx%v, %d Hz, up to %d players, seed %d",
			cfg.Game.WorldWidth, cfg.Game.WorldHeight, cfg.Game.TickRate, cfg.Game.MaxActors, cfg.Seed)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	scores.Stop()
}
