// internal/infra/telegram/reporter.go
package telegram

import (
	"time"

	"bin_collection_notifier/internal/domain/notification"

	"gopkg.in/telebot.v3"
)

// SummaryReporter pushes each run's summary to an admin chat. Operational
// diagnostics only; the run never depends on it succeeding.
type SummaryReporter struct {
	bot    *telebot.Bot
	chatID int64
}

func NewSummaryReporter(token string, chatID int64) (*SummaryReporter, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &SummaryReporter{bot: bot, chatID: chatID}, nil
}

// ReportSummary sends the formatted summary to the admin chat.
func (r *SummaryReporter) ReportSummary(summary *notification.RunSummary) error {
	_, err := r.bot.Send(&telebot.Chat{ID: r.chatID}, summary.String())
	return err
}
