// Package plan loads YAML report plans for the CLI: a batch of report
// definitions to generate in one run.
package plan

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fireflybot/fireflybot/pkg/report"
)

type Plan struct {
	Reports []Entry `yaml:"reports"`
}

// Entry is one report definition. Date anchors the window: the covered day
// for daily, any day of the covered month for monthly, the last covered day
// for periodic. Days applies to periodic entries only.
type Entry struct {
	Kind   string `yaml:"kind"`
	Date   string `yaml:"date"`
	Days   int    `yaml:"days"`
	Header string `yaml:"header"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Reports) == 0 {
		return nil, fmt.Errorf("plan has no reports")
	}
	return &p, nil
}

// Report builds the report for this entry. defaultDays fills in the period
// length when the entry leaves Days unset.
func (e Entry) Report(defaultDays int) (report.Report, error) {
	date, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return report.Report{}, fmt.Errorf("invalid date %q: %w", e.Date, err)
	}

	var r report.Report
	switch report.Kind(e.Kind) {
	case report.Daily:
		r = report.NewDaily(date)
	case report.Monthly:
		r = report.NewMonthly(date)
	case report.Periodic:
		days := e.Days
		if days == 0 {
			days = defaultDays
		}
		r = report.NewPeriodic(date, days)
	default:
		return report.Report{}, fmt.Errorf("unknown report kind %q", e.Kind)
	}

	if e.Header != "" {
		r.Header = e.Header
	}
	return r, nil
}

func (p *Plan) Print() {
	for i, e := range p.Reports {
		fmt.Printf("[%d] kind=%s date=%s\n", i+1, e.Kind, e.Date)
	}
}
