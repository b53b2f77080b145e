package bot

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf16"

	tele "gopkg.in/telebot.v3"
)

// mentionToken matches the <@id> tokens used in resolver input and in
// outgoing game messages.
var mentionToken = regexp.MustCompile(`<@(\d+)>`)

// normalizeMessage rewrites a Telegram message into resolver input: the
// bot's own mention becomes the configured bot name, and every other
// mention becomes a <@id> token. Reports whether the message was addressed
// to the bot at all. Entity offsets are UTF-16 code units, so the rewrite
// works in that space.
func (b *Bot) normalizeMessage(chatID int64, m *tele.Message) (string, bool) {
	me := b.bot.Me
	encoded := utf16.Encode([]rune(m.Text))

	type span struct {
		start, end int
		repl       string
	}
	var spans []span
	addressed := false

	for _, e := range m.Entities {
		if e.Offset < 0 || e.Offset+e.Length > len(encoded) {
			continue
		}
		switch e.Type {
		case tele.EntityTMention:
			if e.User == nil {
				continue
			}
			if e.User.ID == me.ID {
				addressed = true
				spans = append(spans, span{e.Offset, e.Offset + e.Length, b.name})
				continue
			}
			b.roster.Observe(chatID, e.User)
			spans = append(spans, span{e.Offset, e.Offset + e.Length, fmt.Sprintf("<@%d>", e.User.ID)})
		case tele.EntityMention:
			mention := string(utf16.Decode(encoded[e.Offset : e.Offset+e.Length]))
			username := strings.TrimPrefix(mention, "@")
			if strings.EqualFold(username, me.Username) {
				addressed = true
				spans = append(spans, span{e.Offset, e.Offset + e.Length, b.name})
				continue
			}
			if p, ok := b.roster.FindByUsername(chatID, username); ok {
				spans = append(spans, span{e.Offset, e.Offset + e.Length, p.Mention()})
			}
		}
	}

	// Apply replacements right to left so earlier offsets stay valid.
	sort.Slice(spans, func(i, j int) bool { return spans[i].start > spans[j].start })
	for _, s := range spans {
		repl := utf16.Encode([]rune(s.repl))
		next := make([]uint16, 0, len(encoded)-(s.end-s.start)+len(repl))
		next = append(next, encoded[:s.start]...)
		next = append(next, repl...)
		next = append(next, encoded[s.end:]...)
		encoded = next
	}

	text := strings.TrimSpace(string(utf16.Decode(encoded)))
	if !addressed && strings.HasPrefix(strings.ToLower(text), strings.ToLower(b.name)) {
		addressed = true
	}
	return text, addressed
}

// renderMentions turns <@id> tokens in an outgoing message into Telegram
// mention links so the named players get pinged.
func (b *Bot) renderMentions(chatID int64, text string) string {
	return mentionToken.ReplaceAllStringFunc(text, func(token string) string {
		id := mentionToken.FindStringSubmatch(token)[1]
		var userID int64
		fmt.Sscanf(id, "%d", &userID)
		name := b.roster.NameFor(chatID, userID)
		if name == "" {
			name = "player"
		}
		return fmt.Sprintf("[%s](tg://user?id=%d)", name, userID)
	})
}
