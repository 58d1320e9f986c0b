// Package bot is the Telegram front-end: it translates updates into engine
// operations and renders derived state back to the user. All validation of
// user-facing parameters happens here, before a track is started.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/models"
	"github.com/zenithmode/zenith/internal/orchestrator"
	"github.com/zenithmode/zenith/internal/session"
	"github.com/zenithmode/zenith/internal/storage"
)

var focusModes = map[string]models.FocusMode{
	"gaming": models.ModeGaming,
	"work":   models.ModeWork,
	"study":  models.ModeStudy,
}

var focusMoods = map[string]models.FocusMood{
	"happy":     models.MoodHappy,
	"stressed":  models.MoodStressed,
	"tired":     models.MoodTired,
	"energetic": models.MoodEnergetic,
}

type Bot struct {
	api        *tgbotapi.BotAPI
	store      *session.Store
	orch       *orchestrator.Orchestrator
	storage    storage.Storage
	maxResults int
	logger     *zap.Logger
}

func New(token string, store *session.Store, orch *orchestrator.Orchestrator, persistence storage.Storage, maxResults int, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:        api,
		store:      store,
		orch:       orch,
		storage:    persistence,
		maxResults: maxResults,
		logger:     logger,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()
	userID := b.ensureUser(message)

	if message.IsCommand() {
		b.handleCommand(ctx, userID, message)
	} else {
		b.handleChat(ctx, userID, message)
	}

	b.persist(ctx)
}

// ensureUser maps the Telegram identity onto a roster user: first contact
// registers one under a synthetic address derived from the Telegram id, and
// a sender other than the current user takes over the active session. The
// returned User.ID keys all history operations.
func (b *Bot) ensureUser(message *tgbotapi.Message) string {
	email := fmt.Sprintf("tg-%d@telegram.local", message.From.ID)

	user, ok := b.store.UserByEmail(email)
	if !ok {
		name := message.From.FirstName
		if name == "" {
			name = message.From.UserName
		}
		if name == "" {
			name = "Zenith user"
		}

		var err error
		user, err = b.store.Register(name, email, "")
		if err != nil {
			b.logger.Error("registration failed", zap.Error(err), zap.String("email", email))
			return strconv.FormatInt(message.From.ID, 10)
		}
	}

	if cur, ok := b.store.CurrentUser(); !ok || cur.ID != user.ID {
		if _, err := b.store.Login(email, ""); err != nil {
			b.logger.Error("login failed", zap.Error(err), zap.String("email", email))
		}
	}
	return user.ID
}

func (b *Bot) handleCommand(ctx context.Context, userID string, message *tgbotapi.Message) {
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		// Registration and session load already happened in ensureUser.
		b.reply(message.Chat.ID,
			"Hi, I'm Zenith Mode. Set your focus with /mode, /mood and /time, then ask for /suggest. Send any text to chat, or /videos <query> for recommendations.")

	case "mode":
		mode, ok := focusModes[strings.ToLower(args)]
		if !ok {
			b.reply(message.Chat.ID, "Pick a mode: Gaming, Work or Study.")
			return
		}
		b.store.SetFocusMode(mode)
		b.reply(message.Chat.ID, fmt.Sprintf("Mode set to %s.", mode))

	case "mood":
		mood, ok := focusMoods[strings.ToLower(args)]
		if !ok {
			b.reply(message.Chat.ID, "Pick a mood: Happy, Stressed, Tired or Energetic.")
			return
		}
		b.store.SetFocusMood(mood)
		b.reply(message.Chat.ID, fmt.Sprintf("Mood set to %s.", mood))

	case "time":
		if args == "" {
			args = timeOfDayNow()
		}
		b.store.SetFocusTimeOfDay(args)
		b.reply(message.Chat.ID, fmt.Sprintf("Time of day set to %s.", args))

	case "suggest":
		b.handleSuggest(ctx, userID, message)

	case "videos":
		b.handleVideos(ctx, userID, message, args)

	case "clear":
		b.store.ClearHistory(userID)
		b.reply(message.Chat.ID, "History cleared and focus reset.")

	default:
		b.reply(message.Chat.ID, "I don't know that command.")
	}
}

func (b *Bot) handleSuggest(ctx context.Context, userID string, message *tgbotapi.Message) {
	focus := b.store.Focus()
	if focus.Mode == "" || focus.Mood == "" || focus.TimeOfDay == "" {
		b.reply(message.Chat.ID, "Set /mode, /mood and /time first so I can tailor the plan.")
		return
	}

	handle, err := b.orch.StartSuggestion(ctx, userID, focus.Mode, focus.Mood, focus.TimeOfDay)
	if err != nil {
		b.logger.Error("failed to start suggestion", zap.Error(err), zap.String("user_id", userID))
		b.reply(message.Chat.ID, "Sorry, I couldn't start on that. Please try again.")
		return
	}
	<-handle.Done()

	if st := b.orch.Status(orchestrator.TrackSuggestion); st.Phase == models.PhaseRejected {
		b.logger.Error("suggestion rejected", zap.String("error", st.Error), zap.String("user_id", userID))
		b.reply(message.Chat.ID, "I couldn't come up with suggestions right now. Please try again.")
		return
	}

	b.reply(message.Chat.ID, lastText(b.store.History(userID)))
}

func (b *Bot) handleChat(ctx context.Context, userID string, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	// The user's message is appended synchronously; the reply operation
	// receives the history as it stood before it.
	history := b.store.History(userID)
	if _, err := b.store.AppendMessage(userID, text, models.SenderUser, models.KindChat); err != nil {
		b.logger.Error("failed to append user message", zap.Error(err), zap.String("user_id", userID))
		return
	}

	handle, err := b.orch.StartChatReply(ctx, userID, history, text, b.store.Focus())
	if err != nil {
		b.logger.Error("failed to start chat reply", zap.Error(err), zap.String("user_id", userID))
		b.reply(message.Chat.ID, "Sorry, I couldn't process that. Please try again.")
		return
	}
	<-handle.Done()

	if st := b.orch.Status(orchestrator.TrackChatReply); st.Phase == models.PhaseRejected {
		b.logger.Error("chat reply rejected", zap.String("error", st.Error), zap.String("user_id", userID))
		b.reply(message.Chat.ID, "I couldn't reply right now. Please try again.")
		return
	}

	b.reply(message.Chat.ID, lastText(b.store.History(userID)))
}

func (b *Bot) handleVideos(ctx context.Context, userID string, message *tgbotapi.Message, query string) {
	handle, err := b.orch.StartRecommendationSearch(ctx, query, b.store.Focus(), b.maxResults)
	if err != nil {
		b.reply(message.Chat.ID, "Tell me what to look for, e.g. /videos learn go concurrency.")
		return
	}
	<-handle.Done()

	if st := b.orch.Status(orchestrator.TrackRecommendation); st.Phase == models.PhaseRejected {
		b.logger.Error("recommendation search rejected", zap.String("error", st.Error), zap.String("user_id", userID))
		b.reply(message.Chat.ID, "Video search isn't available right now. Please try again.")
		return
	}

	recs := b.store.Recommendations()
	if len(recs) == 0 {
		b.reply(message.Chat.ID, "No videos found for that. Try different words.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Here's what I found:\n")
	for i, rec := range recs {
		fmt.Fprintf(&sb, "%d. %s - %s (%d views)\nhttps://www.youtube.com/watch?v=%s\n",
			i+1, rec.Title, rec.ChannelTitle, rec.ViewCount, rec.ID)
	}
	b.reply(message.Chat.ID, sb.String())
}

func (b *Bot) persist(ctx context.Context) {
	if b.storage == nil {
		return
	}
	if err := b.storage.Save(ctx, b.store.Snapshot()); err != nil {
		b.logger.Error("failed to persist state", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func lastText(history []models.Message) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Text
}

func timeOfDayNow() string {
	switch h := time.Now().Hour(); {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
