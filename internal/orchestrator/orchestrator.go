// Package orchestrator coordinates the three asynchronous operation tracks
// (suggestion, chat reply, recommendation search). Each track carries its own
// status and a monotonically increasing request token; a settlement whose
// token is no longer the latest issued for its track is discarded, so
// overlapping same-kind operations resolve to "latest request wins" instead
// of "last response wins".
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/llm"
	"github.com/zenithmode/zenith/internal/models"
	"github.com/zenithmode/zenith/internal/prompt"
	"github.com/zenithmode/zenith/internal/recommend"
	"github.com/zenithmode/zenith/internal/session"
)

// Track identifies one independently tracked operation kind.
type Track string

const (
	TrackSuggestion     Track = "suggestion"
	TrackChatReply      Track = "chatReply"
	TrackRecommendation Track = "recommendation"
)

const defaultMaxResults = 3

// Handle lets a caller wait for or abandon one started operation. Cancel
// aborts the provider call; an already-settled operation ignores it.
type Handle struct {
	done   chan struct{}
	cancel context.CancelFunc
}

// Done is closed when the operation has settled (or was discarded as stale).
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Cancel() {
	if h.cancel != nil {
		h.cancel()
	}
}

func settledHandle() *Handle {
	done := make(chan struct{})
	close(done)
	return &Handle{done: done}
}

type Orchestrator struct {
	store  *session.Store
	llm    llm.Client
	engine *recommend.Engine
	logger *zap.Logger

	suggestionMaxTokens int
	chatMaxTokens       int

	mu     sync.Mutex
	status map[Track]models.OperationStatus
	tokens map[Track]uint64
}

// New wires the orchestrator. llmClient and engine may be nil when the
// corresponding provider is not configured; operations on those tracks then
// reject immediately instead of being attempted.
func New(store *session.Store, llmClient llm.Client, engine *recommend.Engine, suggestionMaxTokens, chatMaxTokens int, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:               store,
		llm:                 llmClient,
		engine:              engine,
		logger:              logger,
		suggestionMaxTokens: suggestionMaxTokens,
		chatMaxTokens:       chatMaxTokens,
		status: map[Track]models.OperationStatus{
			TrackSuggestion:     {Phase: models.PhaseIdle},
			TrackChatReply:      {Phase: models.PhaseIdle},
			TrackRecommendation: {Phase: models.PhaseIdle},
		},
		tokens: make(map[Track]uint64),
	}
}

// Status reads the current status of one track.
func (o *Orchestrator) Status(track Track) models.OperationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status[track]
}

// begin issues a fresh token for the track and moves it to pending. Starting
// a new operation while one is in flight is allowed; the older one becomes
// stale and its settlement will be discarded.
func (o *Orchestrator) begin(track Track) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[track]++
	o.status[track] = models.OperationStatus{Phase: models.PhasePending}
	return o.tokens[track]
}

// settle applies the outcome of one operation unless a newer request for the
// track has been issued since. apply runs under the orchestrator lock only
// when the token is still fresh.
func (o *Orchestrator) settle(track Track, token uint64, opErr error, apply func() error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.tokens[track] != token {
		o.logger.Debug("discarding stale settlement",
			zap.String("track", string(track)),
			zap.Uint64("token", token))
		return
	}

	if opErr == nil && apply != nil {
		opErr = apply()
	}

	if opErr != nil {
		o.status[track] = models.OperationStatus{Phase: models.PhaseRejected, Error: opErr.Error()}
		return
	}
	o.status[track] = models.OperationStatus{Phase: models.PhaseFulfilled}
}

// rejectNow fails a track without attempting the operation.
func (o *Orchestrator) rejectNow(track Track, reason error) *Handle {
	o.mu.Lock()
	o.tokens[track]++
	o.status[track] = models.OperationStatus{Phase: models.PhaseRejected, Error: reason.Error()}
	o.mu.Unlock()

	o.logger.Warn("operation not attempted",
		zap.String("track", string(track)),
		zap.Error(reason))
	return settledHandle()
}

// StartSuggestion generates session suggestions for the focus parameters and
// appends them to userID's history as an ai_suggestion message.
func (o *Orchestrator) StartSuggestion(ctx context.Context, userID string, mode models.FocusMode, mood models.FocusMood, timeOfDay string) (*Handle, error) {
	if mode == "" || mood == "" || strings.TrimSpace(timeOfDay) == "" {
		return nil, fmt.Errorf("start suggestion: mode, mood and time of day required: %w", models.ErrInvalidInput)
	}
	if o.llm == nil {
		return o.rejectNow(TrackSuggestion, fmt.Errorf("no LLM client configured: %w", models.ErrProviderUnavailable)), nil
	}

	token := o.begin(TrackSuggestion)
	p := prompt.SuggestionPrompt(mode, mood, timeOfDay)

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(h.done)
		defer cancel()

		text, err := o.llm.Complete(ctx, p, o.suggestionMaxTokens, nil)
		o.settle(TrackSuggestion, token, err, func() error {
			_, appendErr := o.store.AppendMessage(userID, text, models.SenderAISuggestion, models.KindSuggestion)
			return appendErr
		})
	}()
	return h, nil
}

// StartChatReply generates the assistant's reply to newText. The caller has
// already appended the user's own message synchronously; history is the
// conversation as the caller saw it.
func (o *Orchestrator) StartChatReply(ctx context.Context, userID string, history []models.Message, newText string, focus models.FocusState) (*Handle, error) {
	if strings.TrimSpace(newText) == "" {
		return nil, fmt.Errorf("start chat reply: empty message: %w", models.ErrInvalidInput)
	}
	if o.llm == nil {
		return o.rejectNow(TrackChatReply, fmt.Errorf("no LLM client configured: %w", models.ErrProviderUnavailable)), nil
	}

	token := o.begin(TrackChatReply)
	p := prompt.ChatPrompt(focus, history, newText)

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(h.done)
		defer cancel()

		// Stop on "User:" so the model never simulates the user's turn.
		text, err := o.llm.Complete(ctx, p, o.chatMaxTokens, []string{"User:"})
		o.settle(TrackChatReply, token, err, func() error {
			_, appendErr := o.store.AppendMessage(userID, text, models.SenderAI, models.KindChat)
			return appendErr
		})
	}()
	return h, nil
}

// StartRecommendationSearch normalizes rawQuery with the focus context and
// replaces the recommendation list with the ranked results. An empty provider
// response fulfills with an empty list.
func (o *Orchestrator) StartRecommendationSearch(ctx context.Context, rawQuery string, focus models.FocusState, maxResults int) (*Handle, error) {
	query := recommend.NormalizeQuery(rawQuery, focus)
	if query == "" {
		return nil, fmt.Errorf("start recommendation search: empty query: %w", models.ErrInvalidInput)
	}
	if o.engine == nil {
		return o.rejectNow(TrackRecommendation, fmt.Errorf("no video search client configured: %w", models.ErrProviderUnavailable)), nil
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	token := o.begin(TrackRecommendation)

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(h.done)
		defer cancel()

		recs, err := o.engine.Search(ctx, query, maxResults)
		o.settle(TrackRecommendation, token, err, func() error {
			o.store.SetRecommendations(recs)
			return nil
		})
	}()
	return h, nil
}
