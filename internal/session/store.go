// Package session owns all conversational state: the user roster, per-user
// chat histories, the active conversation view, the focus configuration and
// the last recommendation list. All transitions are synchronous and atomic
// with respect to each other; callers never mutate state directly.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zenithmode/zenith/internal/models"
)

type Store struct {
	mu sync.RWMutex

	users         []models.User
	currentUserID string

	histories map[string][]models.Message
	// active is the currently loaded conversation view; activeUserID records
	// which user it was sourced from, so ClearHistory never has to infer
	// ownership from message identity.
	active       []models.Message
	activeUserID string

	focus           models.FocusState
	recommendations []models.Recommendation

	// seq drives message ids: unique and strictly increasing in creation order.
	seq uint64

	now       func() time.Time
	newUserID func() string
}

func NewStore() *Store {
	return &Store{
		histories: make(map[string][]models.Message),
		now:       time.Now,
		newUserID: func() string { return uuid.New().String() },
	}
}

// Register adds a user to the roster. Email is the unique key.
func (s *Store) Register(name, email, credential string) (models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return models.User{}, fmt.Errorf("register: name and email required: %w", models.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return models.User{}, models.ErrDuplicateEmail
		}
	}

	user := models.User{
		ID:         s.newUserID(),
		Name:       name,
		Email:      email,
		Credential: credential,
	}
	s.users = append(s.users, user)
	return user, nil
}

// UserByEmail looks a user up by the roster's unique key.
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// Login sets the matching user as current and loads their session, which
// resets the focus configuration.
func (s *Store) Login(email, credential string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.Credential == credential {
			s.currentUserID = u.ID
			s.loadLocked(u.ID)
			return u, nil
		}
	}
	return models.User{}, models.ErrBadCredentials
}

func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentUserID = ""
	s.active = nil
	s.activeUserID = ""
	s.focus = models.FocusState{}
}

func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == s.currentUserID {
			return u, true
		}
	}
	return models.User{}, false
}

// LoadSession points the active view at userID's stored history (empty if none
// exists) and resets the focus configuration. Idempotent.
func (s *Store) LoadSession(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(userID)
}

func (s *Store) loadLocked(userID string) {
	s.active = append([]models.Message(nil), s.histories[userID]...)
	s.activeUserID = userID
	s.focus = models.FocusState{}
}

// AppendMessage assigns a fresh creation-ordered id and timestamp, appends to
// the user's history and, when the active view is sourced from that user, to
// the view as well. Empty text is rejected.
func (s *Store) AppendMessage(userID, text string, sender models.Sender, kind models.MessageKind) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, fmt.Errorf("append message: empty text: %w", models.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	msg := models.Message{
		ID:        fmt.Sprintf("%016d", s.seq),
		Text:      text,
		Sender:    sender,
		Kind:      kind,
		Timestamp: s.now(),
	}

	s.histories[userID] = append(s.histories[userID], msg)
	if s.activeUserID == userID {
		s.active = append(s.active, msg)
	}
	return msg, nil
}

// ClearHistory empties userID's stored history, and the active view when it
// was sourced from userID. The focus configuration is reset either way.
func (s *Store) ClearHistory(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.histories, userID)
	if s.activeUserID == userID {
		s.active = nil
	}
	s.focus = models.FocusState{}
}

func (s *Store) SetFocusMode(mode models.FocusMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus.Mode = mode
}

func (s *Store) SetFocusMood(mood models.FocusMood) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus.Mood = mood
}

func (s *Store) SetFocusTimeOfDay(timeOfDay string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus.TimeOfDay = timeOfDay
}

func (s *Store) Focus() models.FocusState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// Messages returns a copy of the active conversation view.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.active...)
}

// History returns a copy of the stored history for userID.
func (s *Store) History(userID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.histories[userID]...)
}

// SetRecommendations replaces the recommendation list wholesale.
func (s *Store) SetRecommendations(recs []models.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = append([]models.Recommendation(nil), recs...)
}

func (s *Store) Recommendations() []models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Recommendation(nil), s.recommendations...)
}
