package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/fireflybot/fireflybot/pkg/app"
	"github.com/fireflybot/fireflybot/pkg/bot"
	"github.com/fireflybot/fireflybot/pkg/config"
	"github.com/fireflybot/fireflybot/pkg/firefly"
	"github.com/fireflybot/fireflybot/pkg/models"
	"github.com/fireflybot/fireflybot/pkg/plan"
	"github.com/fireflybot/fireflybot/pkg/report"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fireflybot",
	Short: "Report bot for a Firefly III ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Telegram bot and the report scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := config.Load(cfgFile, nil)
		if err != nil {
			return err
		}
		logger := newLogger(settings)

		if settings.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}

		client := newClient(settings, logger)
		b, err := bot.New(settings, client, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("app started")
		return app.New(settings, client, b, logger).Run(ctx)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [daily|monthly|periodic]",
	Short: "Generate reports and print them to stdout",
	Long: `Generate reports and print them to stdout.

With a kind argument, generates that report for --date (default yesterday).
With --plan, generates every report in the YAML plan file.
With neither, generates the reports scheduled for today.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cfgFile, nil)
		if err != nil {
			return err
		}
		logger := newLogger(settings)
		client := newClient(settings, logger)

		reports, err := resolveReports(cmd, args, settings)
		if err != nil {
			return err
		}

		ctx := context.Background()
		for _, r := range reports {
			sections := r.Generate(ctx, client, report.OptionsFor(r.Kind, settings))
			fmt.Print(bot.RenderPlain(sections))
			fmt.Println()
		}
		return nil
	},
}

func resolveReports(cmd *cobra.Command, args []string, settings *config.Settings) ([]report.Report, error) {
	planPath, _ := cmd.Flags().GetString("plan")
	if planPath != "" {
		p, err := plan.Load(planPath)
		if err != nil {
			return nil, err
		}
		reports := make([]report.Report, 0, len(p.Reports))
		for _, entry := range p.Reports {
			r, err := entry.Report(settings.DayPeriod)
			if err != nil {
				return nil, err
			}
			reports = append(reports, r)
		}
		return reports, nil
	}

	if len(args) == 0 {
		return report.Scheduled(time.Now(), settings), nil
	}

	date := time.Now().AddDate(0, 0, -1)
	if raw, _ := cmd.Flags().GetString("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", raw, err)
		}
		date = parsed
	}

	switch report.Kind(args[0]) {
	case report.Daily:
		return []report.Report{report.NewDaily(date)}, nil
	case report.Monthly:
		return []report.Report{report.NewMonthly(date)}, nil
	case report.Periodic:
		days, _ := cmd.Flags().GetInt("days")
		if days == 0 {
			days = settings.DayPeriod
		}
		return []report.Report{report.NewPeriodic(date, days)}, nil
	}
	return nil, fmt.Errorf("unknown report kind %q", args[0])
}

var dumpCmd = &cobra.Command{
	Use:   "dump <accounts|budgets|categories|transactions>",
	Short: "Fetch raw ledger entities and pretty-print them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cfgFile, nil)
		if err != nil {
			return err
		}
		logger := newLogger(settings)
		client := newClient(settings, logger)

		start, end, err := dumpWindow(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		switch args[0] {
		case "accounts":
			pp.Println(client.Accounts(ctx, time.Time{}, models.AccountAll))
		case "budgets":
			pp.Println(client.Budgets(ctx, start, end))
		case "categories":
			pp.Println(client.Categories(ctx, start, end))
		case "transactions":
			pp.Println(client.Transactions(ctx, start, end, models.TransactionAll))
		default:
			return fmt.Errorf("unknown entity %q", args[0])
		}
		return nil
	},
}

func dumpWindow(cmd *cobra.Command) (time.Time, time.Time, error) {
	parse := func(flag string) (time.Time, error) {
		raw, _ := cmd.Flags().GetString(flag)
		if raw == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s %q: %w", flag, raw, err)
		}
		return t, nil
	}
	start, err := parse("start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parse("end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func newLogger(settings *config.Settings) *log.Logger {
	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "fireflybot",
		Level:           level,
	})
}

func newClient(settings *config.Settings, logger *log.Logger) *firefly.Client {
	return firefly.New(settings.Firefly.APIURL, settings.Firefly.APIKey, settings.Firefly.Timeout(), logger)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is settings.yaml)")

	reportCmd.Flags().String("date", "", "Report date (YYYY-MM-DD, default yesterday)")
	reportCmd.Flags().Int("days", 0, "Period length for periodic reports (default day_period)")
	reportCmd.Flags().String("plan", "", "YAML plan file with report definitions")

	dumpCmd.Flags().String("start", "", "Window start (YYYY-MM-DD)")
	dumpCmd.Flags().String("end", "", "Window end (YYYY-MM-DD)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	_ = gotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
