package bot

import (
	"sort"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v3"

	"telegram-dare-bot/internal/game"
)

// member is one observed chat user.
type member struct {
	id       int64
	name     string
	username string
}

// Roster tracks the participants seen in each chat. Telegram does not let a
// bot enumerate group members, so the roster is built from message traffic:
// every sender and every user mentioned in an entity gets recorded.
type Roster struct {
	mu      sync.RWMutex
	members map[int64]map[int64]member // chatID -> userID -> member
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{members: make(map[int64]map[int64]member)}
}

// Observe records (or refreshes) a user in a chat's roster.
func (r *Roster) Observe(chatID int64, u *tele.User) {
	if u == nil || u.IsBot {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[chatID] == nil {
		r.members[chatID] = make(map[int64]member)
	}
	r.members[chatID][u.ID] = member{
		id:       u.ID,
		name:     displayName(u),
		username: u.Username,
	}
}

// Participants returns the chat's known participants sorted by name.
func (r *Roster) Participants(chatID int64) []game.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]game.Participant, 0, len(r.members[chatID]))
	for _, m := range r.members[chatID] {
		out = append(out, game.Participant{ID: m.id, Name: m.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindByUsername looks up a participant by @username (without the @).
func (r *Roster) FindByUsername(chatID int64, username string) (game.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members[chatID] {
		if m.username != "" && strings.EqualFold(m.username, username) {
			return game.Participant{ID: m.id, Name: m.name}, true
		}
	}
	return game.Participant{}, false
}

// NameFor returns the display name recorded for a user id, or "" when the
// user has never been observed in the chat.
func (r *Roster) NameFor(chatID, userID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.members[chatID][userID]; ok {
		return m.name
	}
	return ""
}

// displayName renders a Telegram user the way other members see them.
func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
