package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
)

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func main() {
	// .env is optional; flags still win over the environment
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	addr := flag.String("addr", envString("ARENA_ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envString("ARENA_DB", "arena.db"), "Path to SQLite database")
	tickRate := flag.Int("tick-rate", envInt("ARENA_TICK_RATE", DefaultTickRate), "Simulation ticks per second")
	allowRejoin := flag.Bool("allow-rejoin", envBool("ARENA_ALLOW_REJOIN", false), "Allow a playerId to rejoin its in-progress match")
	flag.Parse()

	db, err := OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	manager := NewMatchManager()
	manager.AllowRejoin = *allowRejoin

	hub := NewHub(manager, db)
	hub.SetLoops(NewLoopRunner(manager, hub, *tickRate, db))
	go hub.Run()

	mux := SetupRoutes(hub)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("Match server starting on %s", *addr)
		log.Printf("Tick rate: %d Hz", *tickRate)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	server.Close()
}
