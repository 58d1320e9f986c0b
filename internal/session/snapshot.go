package session

import "github.com/zenithmode/zenith/internal/models"

// Snapshot is the full serializable state of a Store: the single keyed record
// persisted wholesale and restored before any operation runs.
type Snapshot struct {
	Users           []models.User               `json:"users"`
	CurrentUserID   string                      `json:"current_user_id,omitempty"`
	Histories       map[string][]models.Message `json:"histories"`
	ActiveUserID    string                      `json:"active_user_id,omitempty"`
	Focus           models.FocusState           `json:"focus"`
	Recommendations []models.Recommendation     `json:"recommendations,omitempty"`
	MessageSeq      uint64                      `json:"message_seq"`
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	histories := make(map[string][]models.Message, len(s.histories))
	for userID, msgs := range s.histories {
		histories[userID] = append([]models.Message(nil), msgs...)
	}

	return &Snapshot{
		Users:           append([]models.User(nil), s.users...),
		CurrentUserID:   s.currentUserID,
		Histories:       histories,
		ActiveUserID:    s.activeUserID,
		Focus:           s.focus,
		Recommendations: append([]models.Recommendation(nil), s.recommendations...),
		MessageSeq:      s.seq,
	}
}

// Restore replaces the store's state with the snapshot. The message sequence
// is restored too, so ids minted after a restart never regress. A nil
// snapshot resets to defaults.
func (s *Store) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil {
		s.users = nil
		s.currentUserID = ""
		s.histories = make(map[string][]models.Message)
		s.active = nil
		s.activeUserID = ""
		s.focus = models.FocusState{}
		s.recommendations = nil
		s.seq = 0
		return
	}

	s.users = append([]models.User(nil), snap.Users...)
	s.currentUserID = snap.CurrentUserID
	s.histories = make(map[string][]models.Message, len(snap.Histories))
	for userID, msgs := range snap.Histories {
		s.histories[userID] = append([]models.Message(nil), msgs...)
	}
	s.activeUserID = snap.ActiveUserID
	s.active = append([]models.Message(nil), snap.Histories[snap.ActiveUserID]...)
	s.focus = snap.Focus
	s.recommendations = append([]models.Recommendation(nil), snap.Recommendations...)
	s.seq = snap.MessageSeq
}
