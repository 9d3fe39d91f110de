// Package bot is the Telegram presentation layer: it renders report sections
// to HTML, serves the interactive keyboards and routes chat commands and
// callbacks to ledger queries.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fireflybot/fireflybot/pkg/config"
	"github.com/fireflybot/fireflybot/pkg/models"
	"github.com/fireflybot/fireflybot/pkg/report"
)

// Ledger is everything the bot reads from the ledger service. *firefly.Client
// satisfies it.
type Ledger interface {
	report.Ledger
	Accounts(ctx context.Context, date time.Time, kind models.AccountType) []models.Account
}

// Bot serves one Telegram bot connected to one ledger.
type Bot struct {
	api      *tgbotapi.BotAPI
	ledger   Ledger
	settings *config.Settings
	logger   *log.Logger
}

func New(settings *config.Settings, ledger Ledger, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(settings.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Bot{
		api:      api,
		ledger:   ledger,
		settings: settings,
		logger:   logger,
	}, nil
}

// SendSections renders the sections as HTML and sends them to the configured
// chat.
func (b *Bot) SendSections(sections []report.Section) error {
	msg := tgbotapi.NewMessage(b.settings.Telegram.ChatID, RenderHTML(sections))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	var from int64
	if msg.From != nil {
		from = msg.From.ID
	}
	b.logger.Info("message", "from", from, "text", msg.Text)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			reply := tgbotapi.NewMessage(msg.Chat.ID, "Hi")
			reply.ReplyMarkup = mainKeyboard()
			b.send(reply)
		case "stop":
			reply := tgbotapi.NewMessage(msg.Chat.ID, "Bye")
			reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
			b.send(reply)
		}
		return
	}

	switch msg.Text {
	case buttonAccounts:
		b.reply(msg.Chat.ID, b.accountSections(ctx, models.AccountAsset), accountsKeyboard(models.AccountAsset))
	case buttonTransactions:
		today := time.Now()
		b.reply(msg.Chat.ID, b.daySections(ctx, today), transactionsKeyboard(today))
	case buttonBudgets:
		b.reply(msg.Chat.ID, b.budgetSections(ctx, time.Now()), nil)
	case buttonCategories:
		categories := b.ledger.Categories(ctx, time.Time{}, time.Time{})
		names := make([]string, 0, len(categories))
		for _, c := range categories {
			names = append(names, c.Name)
		}
		b.reply(msg.Chat.ID, []report.Section{report.Text("Categories")}, categoriesKeyboard(names))
	case buttonReports:
		b.reply(msg.Chat.ID, []report.Section{report.Text("Choose a report")}, reportsKeyboard(b.settings.DayPeriod))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	b.logger.Info("callback", "from", cb.From.ID, "data", cb.Data)
	defer b.request(tgbotapi.NewCallback(cb.ID, ""))

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	route, arg, _ := strings.Cut(cb.Data, "/")
	if arg == "ok" {
		b.request(tgbotapi.NewDeleteMessage(chatID, messageID))
		return
	}

	switch route {
	case "account":
		kind := models.AccountType(arg)
		b.edit(chatID, messageID, b.accountSections(ctx, kind), accountsKeyboard(kind))
	case "transactions":
		day, err := time.Parse("2006-01-02", arg)
		if err != nil {
			b.logger.Warn("bad transactions callback", "data", cb.Data, "error", err)
			return
		}
		b.edit(chatID, messageID, b.daySections(ctx, day), transactionsKeyboard(day))
	case "category":
		b.reply(chatID, b.categorySections(ctx, arg), nil)
	case "categories":
		// Only the ok branch exists; handled above.
	case "report":
		b.sendReport(ctx, chatID, report.Kind(arg))
		b.request(tgbotapi.NewDeleteMessage(chatID, messageID))
	}
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, kind report.Kind) {
	yesterday := time.Now().AddDate(0, 0, -1)

	var r report.Report
	switch kind {
	case report.Daily:
		r = report.NewDaily(yesterday)
	case report.Monthly:
		r = report.NewMonthly(yesterday)
	case report.Periodic:
		r = report.NewPeriodic(yesterday, b.settings.DayPeriod)
	default:
		b.logger.Warn("unknown report callback", "kind", kind)
		return
	}

	sections := r.Generate(ctx, b.ledger, report.OptionsFor(kind, b.settings))
	b.reply(chatID, sections, nil)
}

// accountSections lists the accounts of one type with their balances.
func (b *Bot) accountSections(ctx context.Context, kind models.AccountType) []report.Section {
	accounts := b.ledger.Accounts(ctx, time.Time{}, kind)
	sections := []report.Section{report.Header(fmt.Sprintf("🟢 %s accounts: 🟢", kind.Title()))}
	if len(accounts) == 0 {
		return append(sections, report.Text("No accounts found."))
	}
	for _, account := range accounts {
		sections = append(sections, report.KeyValue(account.Name,
			fmt.Sprintf("%.2f (%s)", account.CurrentBalance, account.CurrencyCode)))
	}
	return sections
}

// budgetSections shows every budget's spend from the month's start through
// the year's end against its limit.
func (b *Bot) budgetSections(ctx context.Context, now time.Time) []report.Section {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), 12, 31, 23, 59, 59, 0, now.Location())

	budgets := b.ledger.Budgets(ctx, start, end)
	txs := b.ledger.Transactions(ctx, start, end, models.TransactionAll)

	sections := []report.Section{report.Header("📊 Budgets")}
	for _, budget := range budgets {
		var spent float64
		for _, tx := range txs {
			if tx.BudgetName == budget.Name {
				spent += tx.Amount
			}
		}
		value := fmt.Sprintf("%.2f / %.2f", spent, budget.Limit)
		mark := "❌"
		if budget.Limit != 0 {
			value += fmt.Sprintf(" (%d%%)", int(spent/budget.Limit*100))
			if spent <= budget.Limit {
				mark = "✅"
			}
		} else if spent == 0 {
			mark = "✅"
		}
		sections = append(sections, report.KeyValue(mark+" "+budget.Name, value))
	}
	return sections
}

// daySections lists one day's transactions grouped by kind.
func (b *Bot) daySections(ctx context.Context, day time.Time) []report.Section {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())

	sections := []report.Section{report.Header("🟢 Transactions " + day.Format("2006-01-02"))}
	for _, kind := range []models.TransactionType{models.TransactionWithdrawal, models.TransactionDeposit, models.TransactionTransfer} {
		sections = append(sections, report.Header("🟢 "+kind.Title()))
		txs := b.ledger.Transactions(ctx, start, end, kind)
		if len(txs) == 0 {
			sections = append(sections, report.Text("No transactions found."))
			continue
		}
		for _, tx := range txs {
			sections = append(sections, report.KeyValue(
				fmt.Sprintf("[%s] %s (%s)", tx.SourceName, tx.CategoryName, tx.BudgetName),
				fmt.Sprintf("%.2f (%s)", tx.Amount, tx.Description)))
		}
	}
	return sections
}

// categorySections lists the month's transactions for one category, newest
// first.
func (b *Bot) categorySections(ctx context.Context, name string) []report.Section {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	all := b.ledger.Transactions(ctx, start, end, models.TransactionAll)
	var txs []models.Transaction
	for _, tx := range all {
		if tx.CategoryName == name {
			txs = append(txs, tx)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})

	sections := []report.Section{report.Header("🟢 Transactions")}
	if len(txs) == 0 {
		return append(sections, report.Text("No transactions found."))
	}
	for _, tx := range txs {
		sections = append(sections, report.KeyValue(
			fmt.Sprintf("- %s [%s] %s", tx.CreatedAt.Format("2006-01-02"), tx.SourceName, tx.BudgetName),
			fmt.Sprintf("%.2f (%s)", tx.Amount, tx.Description)))
	}
	return sections
}

func (b *Bot) reply(chatID int64, sections []report.Section, keyboard any) {
	msg := tgbotapi.NewMessage(chatID, RenderHTML(sections))
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	b.send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, sections []report.Section, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, RenderHTML(sections), keyboard)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("sending message failed", "error", err)
	}
}

func (b *Bot) request(msg tgbotapi.Chattable) {
	if _, err := b.api.Request(msg); err != nil {
		b.logger.Warn("telegram request failed", "error", err)
	}
}
