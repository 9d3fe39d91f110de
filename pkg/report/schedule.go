package report

import (
	"time"

	"github.com/fireflybot/fireflybot/pkg/config"
)

// Scheduled decides which reports fire today. Pure function of the local
// wall-clock and the settings:
//
//   - Daily fires every day it is enabled, covering yesterday.
//   - Monthly fires on the month's first day, covering the previous month.
//   - Periodic fires on any other day where (day-1) is a multiple of
//     day_period, covering the last day_period days ending yesterday.
func Scheduled(now time.Time, settings *config.Settings) []Report {
	yesterday := now.AddDate(0, 0, -1)

	var reports []Report
	if settings.DailyReport.SendReport {
		reports = append(reports, NewDaily(yesterday))
	}
	if settings.MonthlyReport.SendReport && now.Day() == 1 {
		reports = append(reports, NewMonthly(yesterday))
	}
	if settings.PeriodicReport.SendReport && now.Day() != 1 && (now.Day()-1)%settings.DayPeriod == 0 {
		reports = append(reports, NewPeriodic(yesterday, settings.DayPeriod))
	}
	return reports
}

// OptionsFor picks the exclusion lists configured for the report kind.
func OptionsFor(kind Kind, settings *config.Settings) Options {
	var r config.Report
	switch kind {
	case Daily:
		r = settings.DailyReport
	case Monthly:
		r = settings.MonthlyReport
	case Periodic:
		r = settings.PeriodicReport
	}
	return Options{
		ExcludeBudgets:    r.ExcludeBudgets,
		ExcludeCategories: r.ExcludeCategories,
	}
}
