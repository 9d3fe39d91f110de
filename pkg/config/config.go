// Package config loads the bot settings from a YAML file with environment
// overrides (FIREFLYBOT_ prefix, dots become underscores, so
// FIREFLYBOT_FIREFLY_API_KEY overrides firefly.api_key).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Firefly holds the ledger connection settings.
type Firefly struct {
	APIURL         string `mapstructure:"api_url"`
	APIKey         string `mapstructure:"api_key"`
	RequestTimeout int    `mapstructure:"request_timeout"`
}

// Timeout returns the request timeout as a duration.
func (f Firefly) Timeout() time.Duration {
	return time.Duration(f.RequestTimeout) * time.Second
}

// Telegram holds the chat delivery settings. ChatID is the single chat every
// scheduled report goes to; interactive handlers answer whichever chat asked.
type Telegram struct {
	BotToken  string `mapstructure:"bot_token"`
	ChatID    int64  `mapstructure:"chat_id"`
	SendPause int    `mapstructure:"send_pause"`
}

// Pause returns the delay between consecutive scheduled messages.
func (t Telegram) Pause() time.Duration {
	return time.Duration(t.SendPause) * time.Second
}

// Report holds the per-kind report toggle and exclusion lists.
type Report struct {
	SendReport        bool     `mapstructure:"send_report"`
	ExcludeBudgets    []string `mapstructure:"exclude_budgets"`
	ExcludeCategories []string `mapstructure:"exclude_categories"`
}

// Settings is the full configuration tree.
type Settings struct {
	Firefly          Firefly  `mapstructure:"firefly"`
	Telegram         Telegram `mapstructure:"telegram"`
	LogLevel         string   `mapstructure:"log_level"`
	DayPeriod        int      `mapstructure:"day_period"`
	SendReportHour   int      `mapstructure:"send_report_hour"`
	SendReportMinute int      `mapstructure:"send_report_minute"`
	DailyReport      Report   `mapstructure:"daily_report"`
	MonthlyReport    Report   `mapstructure:"monthly_report"`
	PeriodicReport   Report   `mapstructure:"periodic_report"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("firefly.request_timeout", 60)
	v.SetDefault("telegram.send_pause", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("day_period", 5)
	v.SetDefault("send_report_hour", 12)
	v.SetDefault("send_report_minute", 0)
	v.SetDefault("daily_report.send_report", true)
	v.SetDefault("monthly_report.send_report", true)
	v.SetDefault("periodic_report.send_report", true)
}

// Load reads the settings file at path (default settings.yaml in the working
// directory), applies env overrides and optional flag bindings, and validates
// the ledger connection fields.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("fireflybot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when everything comes from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) validate() error {
	if s.Firefly.APIURL == "" {
		return fmt.Errorf("firefly.api_url is required")
	}
	if s.Firefly.APIKey == "" {
		return fmt.Errorf("firefly.api_key is required")
	}
	if s.DayPeriod < 1 {
		return fmt.Errorf("day_period must be at least 1, got %d", s.DayPeriod)
	}
	return nil
}
