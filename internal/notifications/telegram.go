package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"laura-backend/internal/leads"
)

// TelegramNotifier posts a short summary of each lead to the owner's chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier checks the token against the Bot API (getMe).
// apiEndpoint may be empty for the public API.
func NewTelegramNotifier(token string, chatID int64, apiEndpoint string) (*TelegramNotifier, error) {
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, &http.Client{Timeout: 8 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

func (t *TelegramNotifier) Forward(ctx context.Context, lead leads.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, leadSummary(lead))
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func leadSummary(l leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nouvelle demande %s\n", l.ID)
	fmt.Fprintf(&b, "%s", l.ServiceLabel)
	if l.FrequencyLabel != "" {
		fmt.Fprintf(&b, " · %s", l.FrequencyLabel)
	}
	if l.Hours > 0 {
		fmt.Fprintf(&b, " · %sh", strconv.FormatFloat(l.Hours, 'f', -1, 64))
	}
	b.WriteString("\n")
	if l.Name != "" {
		fmt.Fprintf(&b, "%s\n", l.Name)
	}
	fmt.Fprintf(&b, "Tel: %s\n", l.Phone)
	if l.City != "" {
		fmt.Fprintf(&b, "Ville: %s\n", l.City)
	}
	if l.PriceEstimate > 0 {
		fmt.Fprintf(&b, "Estimation: %.2f €\n", l.PriceEstimate)
	}
	if l.Message != "" {
		fmt.Fprintf(&b, "« %s »", l.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
