package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"product_feedback/internal/form"
	"product_feedback/internal/query"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to the Product Feedback Bot!

Share what you think about the products you use and browse what others said.

Quick start:
1. /add Sony | Headphones | WH-1000XM4 | 4 4 5 4.5 | Great ANC
2. /list sort=overallRating - browse feedback
3. /insights - averages and distribution

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Submitting:
/add <brand> | <type> | <model> | <price> <design> <quality> <overall> | <comments>
  ratings are 1-5, comments are optional

Browsing:
/list [brand=..] [type=..] [sort=..] [order=asc|desc]
  sort: date, brand, productType, overallRating (default: date desc)
/brand <name> - feedback for one brand (case-insensitive)
/insights [brand=..] [type=..] - averages and product type distribution`)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /add <brand> | <type> | <model> | <price> <design> <quality> <overall> | <comments>")
		return
	}

	submitted, err := ParseAddArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	draft, err := submitted.Draft()
	if err != nil {
		var ferr *form.Error
		if errors.As(err, &ferr) {
			b.reply(chatID, fmt.Sprintf("Please fix your feedback: %s", ferr.Error()))
			return
		}
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	item, err := b.svc.Add(ctx, draft)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save feedback: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Feedback submitted, thank you!\n\n%s", FormatFeedback(item)))
}

func (b *Bot) handleList(ctx context.Context, chatID int64, args string) {
	qa, err := ParseQueryArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	items, err := b.svc.Query(ctx, qa.Filter, qa.Sort)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, FormatFeedbackList("Feedback", items))
}

func (b *Bot) handleBrand(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /brand <name>")
		return
	}

	items, err := b.svc.ByBrand(ctx, args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if len(items) == 0 {
		b.reply(chatID, fmt.Sprintf("No feedback for brand %q.", args))
		return
	}
	b.reply(chatID, FormatFeedbackList(items[0].Brand, items))
}

func (b *Bot) handleInsights(ctx context.Context, chatID int64, args string) {
	qa, err := ParseQueryArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}

	sum, err := b.svc.Summary(ctx, qa.Filter, qa.Sort)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatSummary(sum))
	if kb, ok := insightsKeyboard(sum.Brands, qa.Filter != query.NoFilter); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send insights", "chat_id", chatID, "error", err)
	}
}
