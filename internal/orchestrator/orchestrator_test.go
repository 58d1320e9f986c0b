package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/models"
	"github.com/zenithmode/zenith/internal/recommend"
	"github.com/zenithmode/zenith/internal/session"
	"github.com/zenithmode/zenith/internal/youtube"
)

// stubLLM delegates to a test-supplied closure so individual tests can gate,
// fail, or inspect completions.
type stubLLM struct {
	mu       sync.Mutex
	prompts  []string
	complete func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error)
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.complete(ctx, prompt, maxTokens, stop)
}

type stubSearch struct {
	items   []youtube.SearchItem
	details []youtube.VideoDetail
	err     error
}

func (s *stubSearch) Search(ctx context.Context, query string, maxResults int) ([]youtube.SearchItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *stubSearch) Details(ctx context.Context, ids []string) ([]youtube.VideoDetail, error) {
	return s.details, nil
}

func wait(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not settle in time")
	}
}

func TestStartSuggestionFulfillsAndAppends(t *testing.T) {
	store := session.NewStore()
	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		assert.Equal(t, 200, maxTokens)
		assert.Empty(t, stop)
		return "- Action: start with a warm-up task.", nil
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	h, err := o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodTired, "morning")
	require.NoError(t, err)
	wait(t, h)

	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackSuggestion).Phase)
	assert.Empty(t, o.Status(TrackSuggestion).Error)

	history := store.History("u1")
	require.Len(t, history, 1)
	assert.Equal(t, models.SenderAISuggestion, history[0].Sender)
	assert.Equal(t, models.KindSuggestion, history[0].Kind)
	assert.Contains(t, client.prompts[0], "Mode: Work")
}

func TestStartSuggestionValidatesParameters(t *testing.T) {
	o := New(session.NewStore(), &stubLLM{}, nil, 200, 150, zap.NewNop())

	_, err := o.StartSuggestion(context.Background(), "u1", "", models.MoodHappy, "morning")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = o.StartSuggestion(context.Background(), "u1", models.ModeWork, "", "morning")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodHappy, "  ")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	// Validation failures never touch the track.
	assert.Equal(t, models.PhaseIdle, o.Status(TrackSuggestion).Phase)
}

func TestNilLLMRejectsWithoutAttempt(t *testing.T) {
	store := session.NewStore()
	o := New(store, nil, nil, 200, 150, zap.NewNop())

	h, err := o.StartSuggestion(context.Background(), "u1", models.ModeStudy, models.MoodHappy, "evening")
	require.NoError(t, err)
	wait(t, h)

	st := o.Status(TrackSuggestion)
	assert.Equal(t, models.PhaseRejected, st.Phase)
	assert.Contains(t, st.Error, "no LLM client configured")
	assert.Empty(t, store.History("u1"))
}

func TestStartSuggestionRejectsOnProviderFailure(t *testing.T) {
	store := session.NewStore()
	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		return "", models.ErrEmptyResponse
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	h, err := o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodHappy, "noon")
	require.NoError(t, err)
	wait(t, h)

	st := o.Status(TrackSuggestion)
	assert.Equal(t, models.PhaseRejected, st.Phase)
	assert.NotEmpty(t, st.Error)
	assert.Empty(t, store.History("u1"))
}

func TestStartChatReplyAppendsAssistantMessage(t *testing.T) {
	store := session.NewStore()
	store.LoadSession("u1")
	userMsg, err := store.AppendMessage("u1", "how do I focus?", models.SenderUser, models.KindChat)
	require.NoError(t, err)

	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		assert.Equal(t, 150, maxTokens)
		assert.Equal(t, []string{"User:"}, stop)
		return "Try a 25-minute timer.", nil
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	h, err := o.StartChatReply(context.Background(), "u1", store.Messages(), "how do I focus?", store.Focus())
	require.NoError(t, err)
	wait(t, h)

	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackChatReply).Phase)
	history := store.History("u1")
	require.Len(t, history, 2)
	assert.Equal(t, models.SenderAI, history[1].Sender)
	assert.Equal(t, models.KindChat, history[1].Kind)
	assert.Equal(t, "Try a 25-minute timer.", history[1].Text)
	assert.Greater(t, history[1].ID, userMsg.ID)
}

func TestStartChatReplyRejectsEmptyText(t *testing.T) {
	o := New(session.NewStore(), &stubLLM{}, nil, 200, 150, zap.NewNop())

	_, err := o.StartChatReply(context.Background(), "u1", nil, "   ", models.FocusState{})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, models.PhaseIdle, o.Status(TrackChatReply).Phase)
}

func TestLatestSuggestionRequestWins(t *testing.T) {
	store := session.NewStore()

	firstGate := make(chan struct{})
	secondGate := make(chan struct{})
	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		if strings.Contains(prompt, "Time of Day: first") {
			<-firstGate
			return "stale suggestion", nil
		}
		<-secondGate
		return "fresh suggestion", nil
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	h1, err := o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodHappy, "first")
	require.NoError(t, err)
	h2, err := o.StartSuggestion(context.Background(), "u1", models.ModeStudy, models.MoodTired, "second")
	require.NoError(t, err)

	// The second request settles first, then the first one arrives late.
	close(secondGate)
	wait(t, h2)
	close(firstGate)
	wait(t, h1)

	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackSuggestion).Phase)
	history := store.History("u1")
	require.Len(t, history, 1)
	assert.Equal(t, "fresh suggestion", history[0].Text)
}

func TestStaleFailureDoesNotOverwriteFreshSuccess(t *testing.T) {
	store := session.NewStore()

	firstGate := make(chan struct{})
	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		if strings.Contains(prompt, "Time of Day: first") {
			<-firstGate
			return "", models.ErrTransport
		}
		return "fresh suggestion", nil
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	h1, err := o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodHappy, "first")
	require.NoError(t, err)
	h2, err := o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodHappy, "second")
	require.NoError(t, err)
	wait(t, h2)

	close(firstGate)
	wait(t, h1)

	st := o.Status(TrackSuggestion)
	assert.Equal(t, models.PhaseFulfilled, st.Phase)
	assert.Empty(t, st.Error)
}

func TestTracksAreIndependent(t *testing.T) {
	store := session.NewStore()

	chatGate := make(chan struct{})
	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		if len(stop) > 0 {
			<-chatGate // chat replies block until released
			return "reply", nil
		}
		return "suggestion", nil
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	chatHandle, err := o.StartChatReply(context.Background(), "u1", nil, "hello", models.FocusState{})
	require.NoError(t, err)

	// A pending chat reply does not block the suggestion track.
	sugHandle, err := o.StartSuggestion(context.Background(), "u1", models.ModeGaming, models.MoodEnergetic, "night")
	require.NoError(t, err)
	wait(t, sugHandle)

	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackSuggestion).Phase)
	assert.Equal(t, models.PhasePending, o.Status(TrackChatReply).Phase)

	close(chatGate)
	wait(t, chatHandle)
	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackChatReply).Phase)
}

func TestCancelAbortsPendingOperation(t *testing.T) {
	store := session.NewStore()
	client := &stubLLM{complete: func(ctx context.Context, prompt string, maxTokens int, stop []string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	o := New(store, client, nil, 200, 150, zap.NewNop())

	h, err := o.StartSuggestion(context.Background(), "u1", models.ModeWork, models.MoodHappy, "morning")
	require.NoError(t, err)
	h.Cancel()
	wait(t, h)

	st := o.Status(TrackSuggestion)
	assert.Equal(t, models.PhaseRejected, st.Phase)
	assert.NotEmpty(t, st.Error)
	assert.Empty(t, store.History("u1"))
}

func TestRecommendationSearchReplacesList(t *testing.T) {
	store := session.NewStore()
	store.SetRecommendations([]models.Recommendation{{ID: "old"}})

	engine := recommend.NewEngine(&stubSearch{
		items:   []youtube.SearchItem{{VideoID: "new", PublishedAt: time.Now()}},
		details: []youtube.VideoDetail{{ViewCount: 100, Duration: "PT3M"}},
	}, zap.NewNop())
	o := New(store, nil, engine, 200, 150, zap.NewNop())

	h, err := o.StartRecommendationSearch(context.Background(), "learn go", models.FocusState{Mode: models.ModeStudy}, 3)
	require.NoError(t, err)
	wait(t, h)

	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackRecommendation).Phase)
	recs := store.Recommendations()
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].ID)
}

func TestRecommendationSearchEmptyProviderResponseFulfills(t *testing.T) {
	store := session.NewStore()
	store.SetRecommendations([]models.Recommendation{{ID: "old"}})

	engine := recommend.NewEngine(&stubSearch{}, zap.NewNop())
	o := New(store, nil, engine, 200, 150, zap.NewNop())

	h, err := o.StartRecommendationSearch(context.Background(), "something obscure", models.FocusState{}, 3)
	require.NoError(t, err)
	wait(t, h)

	assert.Equal(t, models.PhaseFulfilled, o.Status(TrackRecommendation).Phase)
	assert.Empty(t, store.Recommendations())
}

func TestRecommendationSearchRejectsOnProviderFailure(t *testing.T) {
	store := session.NewStore()
	store.SetRecommendations([]models.Recommendation{{ID: "old"}})

	engine := recommend.NewEngine(&stubSearch{err: models.ErrTransport}, zap.NewNop())
	o := New(store, nil, engine, 200, 150, zap.NewNop())

	h, err := o.StartRecommendationSearch(context.Background(), "focus music", models.FocusState{}, 3)
	require.NoError(t, err)
	wait(t, h)

	st := o.Status(TrackRecommendation)
	assert.Equal(t, models.PhaseRejected, st.Phase)
	assert.NotEmpty(t, st.Error)

	// A failed search never touches the previous list.
	require.Len(t, store.Recommendations(), 1)
	assert.Equal(t, "old", store.Recommendations()[0].ID)
}

func TestRecommendationSearchRejectsEmptyNormalizedQuery(t *testing.T) {
	engine := recommend.NewEngine(&stubSearch{}, zap.NewNop())
	o := New(session.NewStore(), nil, engine, 200, 150, zap.NewNop())

	// Nothing but filler words and no focus mode leaves an empty query.
	_, err := o.StartRecommendationSearch(context.Background(), "show me some videos", models.FocusState{}, 3)
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, models.PhaseIdle, o.Status(TrackRecommendation).Phase)
}

func TestNilEngineRejectsRecommendationTrack(t *testing.T) {
	o := New(session.NewStore(), nil, nil, 200, 150, zap.NewNop())

	h, err := o.StartRecommendationSearch(context.Background(), "focus playlist", models.FocusState{}, 3)
	require.NoError(t, err)
	wait(t, h)

	st := o.Status(TrackRecommendation)
	assert.Equal(t, models.PhaseRejected, st.Phase)
	assert.Contains(t, st.Error, "no video search client configured")
}
