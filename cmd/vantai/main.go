package main

import (
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantai/console/internal/api"
	"github.com/vantai/console/internal/app"
	"github.com/vantai/console/internal/credential"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/notify"
	"github.com/vantai/console/internal/realtime"
	"github.com/vantai/console/internal/session"
	"github.com/vantai/console/internal/store"
)

func main() {
	configPath := os.Getenv("VANTAI_CONFIG")
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cachePath := os.Getenv("VANTAI_CACHE_PATH")
	if cachePath == "" {
		cachePath = model.DefaultCachePath()
	}

	cache, err := store.Open(cachePath)
	if err != nil {
		log.Fatalf("failed to open cache database: %v", err)
	}
	defer cache.Close()

	creds := credential.NewKeyringStore()

	timeout := time.Duration(cfg.API.TimeoutSec) * time.Second
	apiClient := api.NewClient(cfg.API.BaseURL, timeout)
	sess := session.NewManager(apiClient, creds)

	bus := notify.NewBus()
	notifyStore := notify.NewStore(apiClient, bus, cache)
	rt := realtime.New(cfg.API.WebsocketURL, bus)
	defer rt.Disconnect()

	pollInterval := time.Duration(cfg.API.PollIntervalSec) * time.Second

	p := tea.NewProgram(
		app.New(apiClient, sess, notifyStore, bus, rt, cache, pollInterval),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatalf("error running program: %v", err)
	}
}
