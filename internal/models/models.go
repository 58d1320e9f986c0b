package models

import "time"

// FocusMode is the kind of session the user is about to start.
type FocusMode string

const (
	ModeGaming FocusMode = "Gaming"
	ModeWork   FocusMode = "Work"
	ModeStudy  FocusMode = "Study"
)

// FocusMood is the user's self-reported mood for the session.
type FocusMood string

const (
	MoodHappy     FocusMood = "Happy"
	MoodStressed  FocusMood = "Stressed"
	MoodTired     FocusMood = "Tired"
	MoodEnergetic FocusMood = "Energetic"
)

// FocusState is the active focus configuration. Zero values mean "not set";
// the whole struct is reset whenever the active user changes.
type FocusState struct {
	Mode      FocusMode `json:"mode,omitempty"`
	Mood      FocusMood `json:"mood,omitempty"`
	TimeOfDay string    `json:"time_of_day,omitempty"`
}

type Sender string

const (
	SenderUser         Sender = "user"
	SenderAI           Sender = "ai"
	SenderAISuggestion Sender = "ai_suggestion"
)

type MessageKind string

const (
	KindChat       MessageKind = "chat"
	KindSuggestion MessageKind = "suggestion"
)

// Message is one chat timeline entry. Immutable once created; ids are unique
// and strictly increasing in creation order within a history.
type Message struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Sender    Sender      `json:"sender"`
	Kind      MessageKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
}

// User is a registered account. The credential is stored in the clear: this is
// demo-scope state, not an authentication system.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Credential string `json:"credential"`
}

// Phase of one asynchronous operation track.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// OperationStatus is the externally readable state of one track.
// Error is non-empty if and only if Phase is PhaseRejected.
type OperationStatus struct {
	Phase Phase  `json:"phase"`
	Error string `json:"error,omitempty"`
}

// Recommendation is one ranked video search result. A recommendation list is
// always the product of exactly one completed search call, never merged.
type Recommendation struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	ChannelTitle   string    `json:"channel_title"`
	PublishedAt    time.Time `json:"published_at"`
	ViewCount      uint64    `json:"view_count"`
	Duration       string    `json:"duration"`
	RelevanceScore float64   `json:"relevance_score"`
}
