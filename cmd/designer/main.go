package main

import (
	"log"

	"github.com/aussiebroadwan/designer/internal/auth/app"
)

const (
	configFile      = "config/config.yaml"
	localConfigFile = "config/config.local.yaml"
)

func main() {
	cfg, err := app.LoadConfig(configFile, localConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
