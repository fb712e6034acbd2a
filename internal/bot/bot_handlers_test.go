package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"product_feedback/internal/config"
	"product_feedback/internal/dashboard"
	"product_feedback/internal/storage"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
	Markup any
}

type mockAPI struct {
	mu        sync.Mutex
	sent      []sentMsg
	callbacks []string
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text, Markup: msg.ReplyMarkup})
	case tgbotapi.CallbackConfig:
		m.callbacks = append(m.callbacks, msg.CallbackQueryID)
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(tgbotapi.UpdatesChannel)
}

func (m *mockAPI) StopReceivingUpdates() {}

func (m *mockAPI) last() sentMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMsg{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockAPI) lastText() string {
	return m.last().Text
}

func (m *mockAPI) allTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.Text
	}
	return out
}

func (m *mockAPI) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.callbacks = nil
}

// --- helpers ---

func newTestBot(t *testing.T) (*Bot, *mockAPI, *dashboard.Service) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemory(storage.SampleFeedback())
	t.Cleanup(func() { _ = store.Close() })

	svc := dashboard.New(store, log)
	t.Cleanup(svc.Close)

	api := &mockAPI{}
	b := &Bot{
		api: api,
		svc: svc,
		cfg: &config.Config{},
		log: log,
	}
	return b, api, svc
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

func requireOrder(t *testing.T, got string, want ...string) {
	t.Helper()
	pos := -1
	for _, w := range want {
		i := strings.Index(got, w)
		if i < 0 {
			t.Errorf("reply missing %q, got:\n%s", w, got)
			return
		}
		if i < pos {
			t.Errorf("%q appears out of order, got:\n%s", w, got)
			return
		}
		pos = i
	}
}

// --- handler tests ---

func TestHandleStart(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleStart(100)
	requireContains(t, api.lastText(), "Welcome to the Product Feedback Bot")
}

func TestHandleHelp(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleHelp(100)
	requireContains(t, api.lastText(), "/add")
	requireContains(t, api.lastText(), "/insights")
}

func TestHandleAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("empty args", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleAdd(ctx, 100, "")
		requireContains(t, api.lastText(), "Usage: /add")
	})

	t.Run("parse error", func(t *testing.T) {
		b, api, svc := newTestBot(t)
		b.handleAdd(ctx, 100, "LG | TV | OLED | 1 2")
		requireContains(t, api.lastText(), "expected 4 ratings")

		all, _ := svc.All(ctx)
		if diff := cmp.Diff(3, len(all)); diff != "" {
			t.Errorf("feedback count (-want +got):\n%s", diff)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		b, api, svc := newTestBot(t)
		b.handleAdd(ctx, 100, " | TV | OLED | 6 4 4 4")
		reply := api.lastText()
		requireContains(t, reply, "Please fix your feedback")
		requireContains(t, reply, "Brand name is required")
		requireContains(t, reply, "must be between 1 and 5")

		all, _ := svc.All(ctx)
		if diff := cmp.Diff(3, len(all)); diff != "" {
			t.Errorf("feedback count (-want +got):\n%s", diff)
		}
	})

	t.Run("success", func(t *testing.T) {
		b, api, svc := newTestBot(t)
		b.handleAdd(ctx, 100, "LG | TV | OLED55 | 3 4 4 4 | Deep blacks")
		reply := api.lastText()
		requireContains(t, reply, "Feedback submitted")
		requireContains(t, reply, "LG OLED55 (TV)")

		all, _ := svc.All(ctx)
		if diff := cmp.Diff(4, len(all)); diff != "" {
			t.Fatalf("feedback count (-want +got):\n%s", diff)
		}
		got := all[3]
		if diff := cmp.Diff([]string{"LG", "TV", "OLED55", "Deep blacks"},
			[]string{got.Brand, got.ProductType, got.Model, got.Comments}); diff != "" {
			t.Errorf("stored record (-want +got):\n%s", diff)
		}
	})
}

func TestHandleList(t *testing.T) {
	ctx := context.Background()

	t.Run("default sort is newest first", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleList(ctx, 100, "")
		requireOrder(t, api.lastText(), "Feedback (3):", "iPhone 14 Pro", "QLED", "WH-1000XM4")
	})

	t.Run("filter and ascending rating sort", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleList(ctx, 100, "type=Phone sort=overallRating order=asc")
		reply := api.lastText()
		requireContains(t, reply, "Feedback (1):")
		requireContains(t, reply, "iPhone 14 Pro")
	})

	t.Run("no matches", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleList(ctx, 100, "brand=Nokia")
		requireContains(t, api.lastText(), "No feedback found.")
	})

	t.Run("bad args", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleList(ctx, 100, "order=sideways")
		requireContains(t, api.lastText(), "invalid order")
	})
}

func TestHandleBrand(t *testing.T) {
	ctx := context.Background()

	t.Run("empty args", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleBrand(ctx, 100, "")
		requireContains(t, api.lastText(), "Usage: /brand")
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleBrand(ctx, 100, "sOnY")
		reply := api.lastText()
		requireContains(t, reply, "Sony (1):")
		requireContains(t, reply, "WH-1000XM4")
	})

	t.Run("unknown brand", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleBrand(ctx, 100, "Nokia")
		requireContains(t, api.lastText(), `No feedback for brand "Nokia"`)
	})
}

func TestHandleInsights(t *testing.T) {
	ctx := context.Background()

	t.Run("whole dataset with keyboard", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleInsights(ctx, 100, "")
		msg := api.last()
		requireOrder(t, msg.Text, "Insights over 3", "Samsung: 4.5 (1)", "Apple: 4.5 (1)", "Sony: 4.5 (1)")
		requireContains(t, msg.Text, "Category averages (3 matching)")
		requireContains(t, msg.Text, "Price: 3.7")

		kb, ok := msg.Markup.(tgbotapi.InlineKeyboardMarkup)
		if !ok {
			t.Fatalf("expected inline keyboard, got %T", msg.Markup)
		}
		if diff := cmp.Diff("brand:Samsung", *kb.InlineKeyboard[0][0].CallbackData); diff != "" {
			t.Errorf("first button (-want +got):\n%s", diff)
		}
	})

	t.Run("filter without matches", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleInsights(ctx, 100, "brand=Nokia")
		msg := api.last()
		requireContains(t, msg.Text, "Category averages (0 matching)")
		requireContains(t, msg.Text, "no data")
		requireContains(t, msg.Text, "Headphones: 1")

		kb, ok := msg.Markup.(tgbotapi.InlineKeyboardMarkup)
		if !ok {
			t.Fatalf("expected inline keyboard, got %T", msg.Markup)
		}
		rows := keyboardData(kb)
		if diff := cmp.Diff([]string{"insights:"}, rows[len(rows)-1]); diff != "" {
			t.Errorf("reset row (-want +got):\n%s", diff)
		}
	})

	t.Run("unfiltered has no reset row", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleInsights(ctx, 100, "")
		kb := api.last().Markup.(tgbotapi.InlineKeyboardMarkup)
		for _, row := range keyboardData(kb) {
			for _, data := range row {
				if data == "insights:" {
					t.Errorf("unexpected reset button in %v", row)
				}
			}
		}
	})
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()

	makeMsg := func(cmd, args string) *tgbotapi.Message {
		text := "/" + cmd
		if args != "" {
			text += " " + args
		}
		return &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 100},
			Text: text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len("/" + cmd)},
			},
		}
	}

	b, api, _ := newTestBot(t)
	cmds := []struct {
		cmd      string
		args     string
		contains string
	}{
		{"start", "", "Welcome"},
		{"help", "", "/add"},
		{"list", "", "Feedback (3):"},
		{"brand", "apple", "Apple (1):"},
		{"insights", "", "Insights over 3"},
		{"add", "", "Usage: /add"},
		{"unknown_cmd", "", "Unknown command"},
	}
	for _, tc := range cmds {
		api.reset()
		b.handleCommand(ctx, makeMsg(tc.cmd, tc.args))
		requireContains(t, api.lastText(), tc.contains)
	}
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()
	user := &tgbotapi.User{ID: 1, UserName: "tester"}

	t.Run("invalid data format", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		cb := &tgbotapi.CallbackQuery{
			ID:      "cb1",
			From:    user,
			Data:    "nocolon",
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		}
		b.handleCallback(ctx, cb)
		if diff := cmp.Diff(0, len(api.allTexts())); diff != "" {
			t.Errorf("expected no text messages (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"cb1"}, api.callbacks); diff != "" {
			t.Errorf("callback ack (-want +got):\n%s", diff)
		}
	})

	t.Run("brand callback", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		cb := &tgbotapi.CallbackQuery{
			ID:      "cb2",
			From:    user,
			Data:    "brand:Samsung",
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		}
		b.handleCallback(ctx, cb)
		requireContains(t, api.lastText(), "Samsung (1):")
	})

	t.Run("reset callback shows all feedback", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		cb := &tgbotapi.CallbackQuery{
			ID:      "cb5",
			From:    user,
			Data:    "insights:",
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		}
		b.handleCallback(ctx, cb)
		requireContains(t, api.lastText(), "Category averages (3 matching)")
	})

	t.Run("insights callback", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		cb := &tgbotapi.CallbackQuery{
			ID:      "cb3",
			From:    user,
			Data:    "insights:type=TV",
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		}
		b.handleCallback(ctx, cb)
		requireContains(t, api.lastText(), "Category averages (1 matching)")
	})

	t.Run("no message", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleCallback(ctx, &tgbotapi.CallbackQuery{ID: "cb4", From: user, Data: "brand:Sony"})
		if diff := cmp.Diff(0, len(api.allTexts())); diff != "" {
			t.Errorf("expected no text messages (-want +got):\n%s", diff)
		}
	})
}
