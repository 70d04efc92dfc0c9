package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/FanzeeApp/sotvolbackend/internal/model"
	"github.com/FanzeeApp/sotvolbackend/internal/service"
)

// AdminGranter manages the persisted admin set from chat commands.
type AdminGranter interface {
	Add(ctx context.Context, telegramID int64, username string) error
	Remove(ctx context.Context, telegramID int64) error
}

// Listen consumes updates and drives the admin-side booking actions.
// Intended to run in its own goroutine for the process lifetime.
func (b *Bot) Listen(auth *service.AuthService, bookings *service.BookingService, admins AdminGranter) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	for update := range b.api.GetUpdatesChan(u) {
		switch {
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery, auth, bookings)
		case update.Message != nil && update.Message.IsCommand():
			b.handleCommand(update.Message, auth, admins)
		}
	}
}

// handleCallback applies the inline booking actions offered at
// notification time: confirm moves the booking to reserved, cancel to
// canceled. The presser must pass the same admin gate as the HTTP surface.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery, auth *service.AuthService, bookings *service.BookingService) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	parts := strings.SplitN(cb.Data, "|", 2)
	if len(parts) != 2 {
		return
	}
	action, orderCode := parts[0], parts[1]

	var status string
	switch action {
	case "bk_reserve":
		status = model.BookingReserved
	case "bk_cancel":
		status = model.BookingCanceled
	default:
		return
	}

	isAdmin, err := auth.IsAdmin(ctx, cb.From.ID)
	if err != nil {
		b.log.Error("admin check failed", "user", cb.From.ID, "err", err)
		return
	}
	if !isAdmin {
		b.answer(cb.ID, "Ruxsat yo'q")
		return
	}

	if _, err := bookings.UpdateStatus(ctx, orderCode, status); err != nil {
		b.log.Warn("booking status update via callback failed",
			"order_code", orderCode, "status", status, "err", err)
		b.answer(cb.ID, "Xatolik yuz berdi")
		return
	}

	note := "✅ Band qilindi"
	if status == model.BookingCanceled {
		note = "❌ Bekor qilindi"
	}
	if cb.Message != nil {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
			cb.Message.Text+"\n\n"+note)
		if _, err := b.api.Send(edit); err != nil {
			b.log.Warn("notification edit failed", "err", err)
		}
	}
	b.answer(cb.ID, note)
}

// handleCommand supports /grant <id> and /revoke <id> for managing the
// persisted admin set. Only existing admins may use them.
func (b *Bot) handleCommand(msg *tgbotapi.Message, auth *service.AuthService, admins AdminGranter) {
	cmd := msg.Command()
	if cmd != "grant" && cmd != "revoke" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	isAdmin, err := auth.IsAdmin(ctx, msg.From.ID)
	if err != nil || !isAdmin {
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "Foydalanish: /"+cmd+" <telegram_id>")
		return
	}

	switch cmd {
	case "grant":
		err = admins.Add(ctx, id, "")
	case "revoke":
		err = admins.Remove(ctx, id)
	}
	if err != nil {
		b.log.Error("admin command failed", "cmd", cmd, "id", id, "err", err)
		b.reply(msg.Chat.ID, "Xatolik yuz berdi")
		return
	}
	b.reply(msg.Chat.ID, "Bajarildi ✅")
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Warn("callback answer failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("reply failed", "err", err)
	}
}
