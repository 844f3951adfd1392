package reporter

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-applypilot-automation/internal/models"
)

// TelegramReporter pushes terminal submission states to a chat. Optional:
// a nil reporter is fine, every method tolerates it.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	if t == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

// SendCompleted announces a successful submission with its confirmation.
func (t *TelegramReporter) SendCompleted(job *models.SubmissionJob) error {
	if t == nil || job.Result == nil {
		return nil
	}
	text := fmt.Sprintf(
		"✅ <b>Application submitted</b>\n"+
			"🔗 <a href=\"%s\">Job posting</a>\n"+
			"🤖 Match score: %d/100\n"+
			"📝 %s",
		job.JobURL,
		job.MatchScore,
		job.Result.ConfirmationText,
	)
	return t.SendMessage(text)
}

// SendFailed announces a failed submission with the captured error.
func (t *TelegramReporter) SendFailed(job *models.SubmissionJob) error {
	if t == nil {
		return nil
	}
	text := fmt.Sprintf(
		"❌ <b>Application failed</b>\n"+
			"🔗 <a href=\"%s\">Job posting</a>\n"+
			"⚠️ %s",
		job.JobURL,
		job.Error,
	)
	return t.SendMessage(text)
}
