package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"product_feedback/internal/query"
)

const (
	cmdBrand    = "brand"
	cmdInsights = "insights"

	// Telegram rejects callback data longer than this.
	maxCallbackData = 64
	buttonsPerRow   = 3
)

// insightsKeyboard builds one button per brand that opens its feedback,
// plus a button that clears the filter when one is active.
// Brands whose callback data would not fit are left out.
func insightsKeyboard(brands []string, filtered bool) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, brand := range brands {
		if brand == query.All {
			continue
		}
		data := cmdBrand + ":" + brand
		if len(data) > maxCallbackData {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(brand, data))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if filtered {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All feedback", cmdInsights+":"),
		))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	action, arg, ok := strings.Cut(cb.Data, ":")
	if !ok {
		return
	}

	b.log.Info("callback",
		"action", action,
		"arg", arg,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cmdBrand:
		b.handleBrand(ctx, chatID, arg)
	case cmdInsights:
		b.handleInsights(ctx, chatID, arg)
	}
}
