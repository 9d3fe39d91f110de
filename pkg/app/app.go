// Package app wires the pieces together: the cron trigger that fires the
// scheduled reports and the bot's update loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/fireflybot/fireflybot/pkg/bot"
	"github.com/fireflybot/fireflybot/pkg/config"
	"github.com/fireflybot/fireflybot/pkg/report"
)

type App struct {
	settings *config.Settings
	ledger   bot.Ledger
	bot      *bot.Bot
	logger   *log.Logger
}

func New(settings *config.Settings, ledger bot.Ledger, b *bot.Bot, logger *log.Logger) *App {
	return &App{
		settings: settings,
		ledger:   ledger,
		bot:      b,
		logger:   logger,
	}
}

// Run starts the daily report trigger and blocks on the bot's update loop
// until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	c := cron.New()
	spec := fmt.Sprintf("%d %d * * *", a.settings.SendReportMinute, a.settings.SendReportHour)
	if _, err := c.AddFunc(spec, func() { a.SendScheduled(ctx) }); err != nil {
		return fmt.Errorf("scheduling reports: %w", err)
	}
	c.Start()
	defer c.Stop()
	a.logger.Info("scheduler started", "cron", spec)

	a.bot.Run(ctx)
	return nil
}

// SendScheduled generates and delivers today's reports strictly one after
// another, pausing between sends to stay inside the delivery rate limits.
func (a *App) SendScheduled(ctx context.Context) {
	reports := report.Scheduled(time.Now(), a.settings)
	for _, r := range reports {
		sections := r.Generate(ctx, a.ledger, report.OptionsFor(r.Kind, a.settings))
		if err := a.bot.SendSections(sections); err != nil {
			a.logger.Error("delivering report failed", "header", r.Header, "error", err)
			continue
		}
		a.logger.Info("report sent", "header", r.Header)

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.settings.Telegram.Pause()):
		}
	}
}
