// Command alertcycle runs a single alert evaluation cycle and exits. It is
// meant for external schedulers (cron, systemd timers) driving cycles
// instead of the in-process poller.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tele "gopkg.in/telebot.v4"

	corecmd "github.com/m3rciful/kursbot/core/cmd"
	"github.com/m3rciful/kursbot/core/logger"
	coretelegram "github.com/m3rciful/kursbot/core/telegram"
	"github.com/m3rciful/kursbot/internal/app"
	"github.com/m3rciful/kursbot/internal/bot"
	"github.com/m3rciful/kursbot/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("alertcycle: %v", err)
	}
}

func run() error {
	cfgPath := corecmd.ResolveConfigPath("CONFIG_PATH", "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.BootOptions{SkipMigrations: true})
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	// Send-only bot handle; no poller is attached.
	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Core.Telegram.Token,
		Client: coretelegram.BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("bot init: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := a.Engine(bot.NewNotifier(tb, a.Users()))
	triggered, err := engine.RunEvaluationCycle(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("triggered %d alert(s)\n", triggered)
	return nil
}
