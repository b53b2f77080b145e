// Package bot provides the Telegram adapter: it turns inbound chat traffic
// into resolver input, runs resolved actions through the transition engine
// under the chat lock, and delivers the game's outgoing messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-dare-bot/internal/config"
	"telegram-dare-bot/internal/game"
	"telegram-dare-bot/internal/pkg/lock"
	"telegram-dare-bot/internal/resolver"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot      *tele.Bot
	cfg      *config.Config
	name     string
	resolver *resolver.Resolver
	engine   *game.Engine
	game     *game.Game
	roster   *Roster
	locks    *lock.ChatLock
}

// Dependencies holds everything the bot needs to run the game.
type Dependencies struct {
	Config   *config.Config
	Resolver *resolver.Resolver
	Engine   *game.Engine
	Game     *game.Game
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:      teleBot,
		cfg:      deps.Config,
		name:     deps.Config.Bot.Name,
		resolver: deps.Resolver,
		engine:   deps.Engine,
		game:     deps.Game,
		roster:   NewRoster(),
		locks:    lock.NewChatLock(),
	}

	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoveryMiddleware())

	b.bot.Handle(tele.OnText, b.handleText)

	return b, nil
}

// handleText processes one inbound chat message end to end: roster update,
// addressing check, resolution, transition, and outgoing delivery.
func (b *Bot) handleText(c tele.Context) error {
	msg := c.Message()
	sender := c.Sender()
	chat := c.Chat()
	if msg == nil || sender == nil || chat == nil {
		return nil
	}
	if sender.ID == b.bot.Me.ID {
		return nil
	}

	b.roster.Observe(chat.ID, sender)

	text, addressed := b.normalizeMessage(chat.ID, msg)
	if !addressed {
		log.Debug().Msg("Skipping message: bot wasn't mentioned")
		return nil
	}
	log.Debug().Str("text", text).Msg("Sanitized inbound message")

	author := game.Participant{ID: sender.ID, Name: displayName(sender)}
	roster := b.roster.Participants(chat.ID)

	// Resolution (and its oracle round-trips) happens before the chat lock
	// is taken, so a slow completion never stalls another chat's game.
	res, err := b.resolver.Resolve(context.Background(), text, author, roster)
	if err != nil {
		return b.reportResolutionFailure(c, err)
	}

	if res.NoAction() {
		if res.Reply != "" {
			return c.Send(res.Reply)
		}
		return nil
	}

	var outgoing []string
	processErr := b.locks.WithLock(chat.ID, func() error {
		err := b.engine.Process(b.game, res.Action)
		outgoing = b.game.DrainOutgoing()
		return err
	})

	for _, line := range outgoing {
		if err := c.Send(b.renderMentions(chat.ID, line), &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
			log.Error().Err(err).Msg("Failed to deliver outgoing message")
		}
	}

	if processErr != nil {
		var stateErr game.StateError
		if errors.As(processErr, &stateErr) {
			// Illegal move or precondition violation: tell the player why.
			return c.Reply(stateErr.Error())
		}
		log.Error().Err(processErr).Stringer("action", res.Action).Msg("Transition failed")
		return nil
	}

	return nil
}

// reportResolutionFailure handles oracle-contract violations and transport
// failures. Either way the game state is untouched and only this one
// message is lost.
func (b *Bot) reportResolutionFailure(c tele.Context, err error) error {
	switch {
	case errors.Is(err, resolver.ErrBadCommandInterpretation),
		errors.Is(err, resolver.ErrBadUserInterpretation):
		log.Warn().Err(err).Msg("Oracle broke its response contract")
	default:
		log.Error().Err(err).Msg("Resolution failed")
	}
	return c.Reply("My brain glitched on that one. Say it again?")
}

// Announce sends a plain message to every whitelisted chat. Used for
// startup and shutdown notices; a bot with no whitelist stays quiet.
func (b *Bot) Announce(text string) {
	for _, chatID := range b.cfg.Whitelist.Chats {
		if _, err := b.bot.Send(&tele.Chat{ID: chatID}, text); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to announce")
		}
	}
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Str("bot_name", b.name).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
