package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fireflybot/fireflybot/pkg/models"
)

const (
	buttonAccounts     = "💳 Accounts"
	buttonTransactions = "🔀 Transactions"
	buttonBudgets      = "📊 Budgets"
	buttonCategories   = "🧾 Categories"
	buttonReports      = "📈 Reports"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAccounts),
			tgbotapi.NewKeyboardButton(buttonTransactions),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonBudgets),
			tgbotapi.NewKeyboardButton(buttonCategories),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonReports),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// accountsKeyboard offers every switchable account type except the one
// currently shown, plus a dismiss button.
func accountsKeyboard(current models.AccountType) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, kind := range []models.AccountType{models.AccountAsset, models.AccountRevenue, models.AccountExpense, models.AccountLiabilities} {
		if kind == current {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(kind.Title(), "account/"+string(kind)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ OK", "account/ok"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// transactionsKeyboard navigates the per-day listing one day back or forward.
func transactionsKeyboard(day time.Time) tgbotapi.InlineKeyboardMarkup {
	prev := day.AddDate(0, 0, -1).Format("2006-01-02")
	next := day.AddDate(0, 0, 1).Format("2006-01-02")
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("<< "+prev, "transactions/"+prev),
			tgbotapi.NewInlineKeyboardButtonData(">> "+next, "transactions/"+next),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ OK", "transactions/ok"),
		),
	)
}

func categoriesKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, "category/"+name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ OK", "categories/ok"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reportsKeyboard(dayPeriod int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Daily report", "report/daily"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📊 %d days report", dayPeriod), "report/periodic"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Monthly report", "report/monthly"),
		),
	)
}
