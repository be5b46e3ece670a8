package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"reversal-alert/internal/api"
	"reversal-alert/internal/bot"
	"reversal-alert/internal/config"
	"reversal-alert/internal/exchange"
	"reversal-alert/internal/journal"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339

	fmt.Println("🤖 Reversal Alert Bot Starting...")

	if env := config.LoadEnv(); env != "" {
		fmt.Printf("   Env: %s\n", env)
	}

	path, err := config.ResolvePath(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to locate config: %v", err)
	}
	store, err := config.NewStore(path)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	cfg := store.Current()

	fmt.Println("✅ Configuration loaded successfully")
	fmt.Printf("   Instrument: %s (%s)\n", cfg.Instrument.Symbol, cfg.Instrument.Interval)
	fmt.Printf("   Provider: %s\n", cfg.MarketData.Provider)
	if cfg.TwelveData.APIKey == "" && cfg.MarketData.Provider != "binance" {
		fmt.Println("   ApiKey: [MISSING]")
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		log.Fatalf("❌ Failed to open journal: %v", err)
	}
	defer j.Close()

	engine := bot.NewBotEngine(store, j)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if bc, ok := engine.Source.(*exchange.BinanceClient); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		t, err := bc.GetServerTime(pingCtx)
		cancel()
		if err != nil {
			log.Fatalf("❌ Connectivity verification failed: %v", err)
		}
		fmt.Printf("✅ Connected! Server Time: %d\n", t)
	}

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API.Listen, engine.State)
		errc := make(chan error, 1)
		server.Start(errc)
		go func() {
			if err := <-errc; err != nil {
				engine.UI.LogError(fmt.Sprintf("Status API stopped: %v", err))
			}
		}()
		fmt.Printf("🌐 Status API on %s\n", cfg.API.Listen)
	}

	fmt.Println("🚦 Starting Main Loop...")
	engine.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			engine.UI.LogError(fmt.Sprintf("Status API shutdown: %v", err))
		}
	}
}
