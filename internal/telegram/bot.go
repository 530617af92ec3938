package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-jobsheet-automation/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     sender
	chatID  int64
	limiter *rate.Limiter
}

// Telegram allows roughly one message per second in a single chat.
const messageInterval = time.Second

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newBot(api, chatID, rate.NewLimiter(rate.Every(messageInterval), 1)), nil
}

func newBot(api sender, chatID int64, limiter *rate.Limiter) *Bot {
	return &Bot{
		api:     api,
		chatID:  chatID,
		limiter: limiter,
	}
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// linkEscaper covers the two characters MarkdownV2 reserves inside (...).
var linkEscaper = strings.NewReplacer(")", "\\)", "\\", "\\\\")

func formatOffer(site string, offer scraper.JobOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 *%s*\n", escapeMarkdown(offer.Position))
	fmt.Fprintf(&b, "🏢 %s\n", escapeMarkdown(offer.Employer))
	if offer.Salary != scraper.NotFound {
		fmt.Fprintf(&b, "💰 %s\n", escapeMarkdown(offer.Salary))
	}
	if offer.Requirements != scraper.NotFound {
		tech := strings.Join(strings.Fields(strings.ReplaceAll(offer.Requirements, "\n", ", ")), " ")
		fmt.Fprintf(&b, "🛠 %s\n", escapeMarkdown(tech))
	}
	fmt.Fprintf(&b, "🔖 Source: %s\n", escapeMarkdown(site))
	fmt.Fprintf(&b, "🔗 [View offer](%s)", linkEscaper.Replace(offer.URL))
	return b.String()
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.api.Send(msg)
	return err
}

// SendOffer posts one new offer.
func (b *Bot) SendOffer(ctx context.Context, site string, offer scraper.JobOffer) error {
	msg := tgbotapi.NewMessage(b.chatID, formatOffer(site, offer))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 View offer", offer.URL)),
	)
	return b.send(ctx, msg)
}

func (b *Bot) SendError(ctx context.Context, err error) error {
	return b.send(ctx, tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err)))
}

func (b *Bot) SendStatus(ctx context.Context, message string) error {
	return b.send(ctx, tgbotapi.NewMessage(b.chatID, "ℹ️ "+message))
}
