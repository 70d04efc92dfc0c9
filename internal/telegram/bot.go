package telegram

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/FanzeeApp/sotvolbackend/internal/model"
	"github.com/FanzeeApp/sotvolbackend/internal/service"
)

// Bot wraps the Telegram API for the two outbound concerns: publishing
// listings to the public channel and notifying admins about bookings.
type Bot struct {
	api         *tgbotapi.BotAPI
	adminChatID int64
	channelID   int64
	log         *slog.Logger
}

func New(token string, adminChatID, channelID int64, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Bot{api: api, adminChatID: adminChatID, channelID: channelID, log: log}, nil
}

// PublishListing posts the listing's media group to the channel and returns
// the id of the first message of the album.
func (b *Bot) PublishListing(l *model.Listing, files []service.PublishFile) (int, error) {
	if len(files) == 0 {
		return 0, fmt.Errorf("no media to publish")
	}

	caption := listingCaption(l)
	media := make([]interface{}, 0, len(files))
	for i, f := range files {
		fb := tgbotapi.FileBytes{Name: f.Name, Bytes: f.Data}
		if f.IsVideo {
			v := tgbotapi.NewInputMediaVideo(fb)
			if i == 0 {
				v.Caption = caption
			}
			media = append(media, v)
		} else {
			p := tgbotapi.NewInputMediaPhoto(fb)
			if i == 0 {
				p.Caption = caption
			}
			media = append(media, p)
		}
	}

	msgs, err := b.api.SendMediaGroup(tgbotapi.NewMediaGroup(b.channelID, media))
	if err != nil {
		return 0, fmt.Errorf("send media group: %w", err)
	}
	if len(msgs) == 0 {
		return 0, fmt.Errorf("empty media group response")
	}
	return msgs[0].MessageID, nil
}

func (b *Bot) DeleteListingMessage(messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(b.channelID, messageID))
	return err
}

// NotifyBooking sends the new-booking message to the admin chat with the
// two inline actions: confirm (reserved) and cancel (canceled).
func (b *Bot) NotifyBooking(l *model.Listing, bk *model.Booking) error {
	var sb strings.Builder
	sb.WriteString("🆕 Yangi buyurtma!\n")
	sb.WriteString(fmt.Sprintf("🧾 Buyurtma: %s\n", bk.OrderCode))
	sb.WriteString(fmt.Sprintf("📱 %s %s (#%d)\n", l.Model, l.Name, l.Code))
	sb.WriteString(fmt.Sprintf("👤 %s\n", bk.FullName))
	sb.WriteString(fmt.Sprintf("📞 %s\n", bk.Phone))
	sb.WriteString(fmt.Sprintf("💵 Boshlang'ich to'lov: %s\n", bk.DownPayment.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("📅 Muddat: %d oy\n", bk.Months))
	sb.WriteString(fmt.Sprintf("💳 Oylik to'lov: %s\n", bk.Monthly.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("💰 Jami: %s", bk.Total.StringFixed(2)))

	msg := tgbotapi.NewMessage(b.adminChatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Tasdiqlash", "bk_reserve|"+bk.OrderCode),
			tgbotapi.NewInlineKeyboardButtonData("❌ Bekor qilish", "bk_cancel|"+bk.OrderCode),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send booking notification: %w", err)
	}
	return nil
}

func listingCaption(l *model.Listing) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📱 %s %s\n", l.Model, l.Name))
	sb.WriteString(fmt.Sprintf("🔢 Kod: #%d\n", l.Code))

	price := l.PriceFormatted
	if price == "" {
		price = l.Price.StringFixed(2)
	}
	sb.WriteString(fmt.Sprintf("💰 Narxi: %s\n", price))

	for _, row := range []struct{ label, value string }{
		{"🛠 Holati", l.Condition},
		{"💾 Xotira", l.Storage},
		{"🎨 Rangi", l.Color},
		{"📦 Karobka", l.Box},
		{"🔋 Batareya", l.Battery},
		{"🛡 Kafolat", l.Warranty},
	} {
		if row.value != "" {
			sb.WriteString(fmt.Sprintf("%s: %s\n", row.label, row.value))
		}
	}

	if l.Exchange {
		sb.WriteString("🔄 Almashtirish: bor\n")
	}
	sb.WriteString(strings.Repeat("⭐", l.Rating))
	return sb.String()
}
