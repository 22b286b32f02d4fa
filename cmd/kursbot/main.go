package main

import (
	"log"

	corecmd "github.com/m3rciful/kursbot/core/cmd"
	"github.com/m3rciful/kursbot/internal/app"
	"github.com/m3rciful/kursbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			a, err := app.New(cfg.(*config.Config), app.BootOptions{})
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	})
	if err != nil {
		log.Fatalf("kursbot: %v", err)
	}
}
