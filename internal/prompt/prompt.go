// Package prompt builds provider-ready prompt text from focus parameters and
// chat history. Everything here is pure string assembly: no state, no I/O,
// no failure modes.
package prompt

import (
	"fmt"
	"strings"

	"github.com/zenithmode/zenith/internal/models"
)

// HistoryWindow is the default number of trailing messages rendered into a
// chat prompt. Older messages are silently dropped to bound prompt size.
const HistoryWindow = 6

// SuggestionPrompt asks for 2-3 actionable session suggestions, each with an
// action, an optional app/site reference, and a one-sentence maxim.
func SuggestionPrompt(mode models.FocusMode, mood models.FocusMood, timeOfDay string) string {
	return fmt.Sprintf(`You are Zenith Mode, a helpful productivity assistant. The user is about to start a session.
Mode: %s
Mood: %s
Time of Day: %s
Based on this, provide 2-3 concise and actionable suggestions. Each suggestion should include:
1. What the user should do (e.g., "Take a 5-min break and stretch").
2. Which app to open or site to visit, if applicable (e.g., "Open Spotify and play a focus playlist").
3. Optionally, a very short, relevant piece of advice or a quote (1 sentence max).
Format the response as a single block of text, with each suggestion clearly separated.`, mode, mood, timeOfDay)
}

// ChatPrompt renders the focus context (only when a mode is set), the last
// HistoryWindow messages of history, the new user line, and a trailing
// assistant-turn marker. Total for any input, including empty text.
func ChatPrompt(focus models.FocusState, history []models.Message, newText string) string {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", roleLabel(msg.Sender), msg.Text))
	}

	var b strings.Builder
	if focus.Mode != "" {
		fmt.Fprintf(&b, "Current Focus: Mode - %s, Mood - %s, Time - %s.\n", focus.Mode, focus.Mood, focus.TimeOfDay)
	}
	fmt.Fprintf(&b, "Chat History:\n%s\nUser: %s\nZenith:", strings.Join(lines, "\n"), newText)
	return b.String()
}

func roleLabel(sender models.Sender) string {
	switch sender {
	case models.SenderUser:
		return "User"
	case models.SenderAISuggestion:
		return "Zenith (Suggestion)"
	default:
		return "Zenith"
	}
}
