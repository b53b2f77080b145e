// Package resolver converts free-form chat messages into game actions. It
// tries a deterministic pattern first, falls back to an LLM command
// classifier, and uses an LLM-assisted fuzzy matcher for ambiguous player
// references. It never touches game state.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"telegram-dare-bot/internal/ai"
	"telegram-dare-bot/internal/game"
)

// Oracle-contract errors: the completion service replied in a shape that
// violates the required grammar. They abort one resolution and nothing else.
var (
	ErrBadCommandInterpretation = errors.New("classifier reply did not match 'COMMAND[:target] -- explanation'")
	ErrBadUserInterpretation    = errors.New("name matcher reply did not match 'name -- explanation'")
)

// mentionPattern matches a platform mention token carrying a numeric id.
var mentionPattern = regexp.MustCompile(`^\s*<@(\d+)>\s*$`)

// Resolution is the outcome of resolving one message: either an Action for
// the engine, or no action with an optional conversational reply.
type Resolution struct {
	Action *game.Action
	Reply  string
}

// NoAction reports whether the message produced nothing for the engine.
func (r *Resolution) NoAction() bool { return r.Action == nil }

// commandGuess is the parsed classifier output. Discarded once folded into
// an Action.
type commandGuess struct {
	command     game.Command
	target      string
	explanation string
}

// userGuess is the parsed fuzzy-matcher output.
type userGuess struct {
	name        string
	explanation string
}

// Resolver owns the two oracle transcripts and the deterministic fast-path
// pattern. One Resolver serves one chat.
type Resolver struct {
	provider ai.Provider
	fastPath *regexp.Regexp

	mu         sync.Mutex
	commandLog *transcript
	userLog    *transcript
}

// New creates a resolver for the given bot name. transcriptLimit bounds the
// classifier history; values below two fall back to DefaultTranscriptLimit.
func New(botName string, provider ai.Provider, transcriptLimit int) *Resolver {
	pattern := fmt.Sprintf(`(?i)^%s\s+(?P<command>\w+)(?:\s+<@(?P<target>\d+)>)?$`, regexp.QuoteMeta(botName))
	return &Resolver{
		provider:   provider,
		fastPath:   regexp.MustCompile(pattern),
		commandLog: newTranscript(commandSystemPrompt, transcriptLimit),
		userLog:    newTranscript(userMatchSystemPrompt, transcriptLimit),
	}
}

// Resolve converts one inbound message into a Resolution. The roster is the
// live participant list of the chat, bot excluded. Oracle-contract errors
// and transport failures fail this one message only.
func (r *Resolver) Resolve(ctx context.Context, text string, author game.Participant, roster []game.Participant) (*Resolution, error) {
	if res := r.resolveExact(text, author, roster); res != nil {
		return res, nil
	}

	log.Debug().Str("text", text).Msg("No exact command, falling back to the classifier")
	guess, err := r.classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if guess.command == game.CommandChat || guess.command == game.CommandMiss {
		reply, err := r.chat(ctx, text, guess.command == game.CommandMiss)
		if err != nil {
			return nil, err
		}
		return &Resolution{Reply: reply}, nil
	}

	action := &game.Action{Command: guess.command, Player: author}
	switch guess.command {
	case game.CommandChoosePoison, game.CommandChooseOrdeal:
		// The colon segment carries the player's pick, not a player name.
		action.Choice = strings.TrimSpace(guess.target)
	default:
		if strings.TrimSpace(guess.target) != "" {
			target, err := r.resolveTarget(ctx, guess.target, roster)
			if err != nil {
				return nil, err
			}
			action.Target = target
		}
	}

	log.Debug().Stringer("action", action).Msg("Resolved action from classifier guess")
	return &Resolution{Action: action}, nil
}

// resolveExact is the deterministic fast path: "<bot-name> <COMMAND>
// [<@id>]". Returns nil to fall through to the classifier.
func (r *Resolver) resolveExact(text string, author game.Participant, roster []game.Participant) *Resolution {
	match := r.fastPath.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return nil
	}
	token, targetID := match[1], match[2]
	if !game.IsKnownCommand(token) {
		log.Debug().Str("token", token).Msg("Exact pattern matched but command unknown")
		return nil
	}

	action := &game.Action{Command: game.ParseCommand(token), Player: author}
	if targetID != "" {
		id, err := strconv.ParseInt(targetID, 10, 64)
		if err == nil {
			action.Target = findByID(roster, id)
		}
	}
	log.Debug().Stringer("action", action).Msg("Resolved action from exact pattern")
	return &Resolution{Action: action}
}

// classify sends the message through the running classifier transcript and
// parses the contractual reply shape.
func (r *Resolver) classify(ctx context.Context, text string) (*commandGuess, error) {
	r.mu.Lock()
	r.commandLog.append(ai.RoleUser, text)
	msgs := r.commandLog.snapshot()
	r.mu.Unlock()

	reply, err := r.provider.Complete(ctx, msgs, ai.Options{Temperature: 1, MaxTokens: 100})
	if err != nil {
		return nil, fmt.Errorf("command classification failed: %w", err)
	}

	r.mu.Lock()
	r.commandLog.append(ai.RoleAssistant, reply)
	r.mu.Unlock()

	guess, err := parseCommandGuess(reply)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("command", string(guess.command)).
		Str("target", guess.target).
		Str("explanation", guess.explanation).
		Msg("Classifier guess")
	return guess, nil
}

// parseCommandGuess splits "COMMAND[:target] -- explanation" on the first
// double-dash, then the head on the first colon. The command token is
// normalized through the lexicon, so unknown tokens come back as MISS.
func parseCommandGuess(reply string) (*commandGuess, error) {
	head, explanation, found := strings.Cut(reply, "--")
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrBadCommandInterpretation, reply)
	}
	token, target, _ := strings.Cut(head, ":")
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadCommandInterpretation, reply)
	}
	return &commandGuess{
		command:     game.ParseCommand(token),
		target:      strings.TrimSpace(target),
		explanation: strings.TrimSpace(explanation),
	}, nil
}

// chat produces the conversational fallback reply. No structural contract
// on the response and no game-state side effects.
func (r *Resolver) chat(ctx context.Context, text string, wasMiss bool) (string, error) {
	msgs := []ai.Message{{Role: ai.RoleSystem, Content: chatSystemPrompt}}
	if wasMiss {
		msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: missNudgePrompt})
	}
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: text})

	reply, err := r.provider.Complete(ctx, msgs, ai.Options{Temperature: 1.5, MaxTokens: 100})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return reply, nil
}

// resolveTarget turns the classifier's raw target segment into a roster
// participant. A target that cannot be resolved yields nil, not an error:
// the engine asks the player to clarify.
func (r *Resolver) resolveTarget(ctx context.Context, raw string, roster []game.Participant) (*game.Participant, error) {
	raw = strings.TrimSpace(raw)

	if match := mentionPattern.FindStringSubmatch(raw); match != nil {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return nil, nil
		}
		return findByID(roster, id), nil
	}

	for _, p := range roster {
		if p.Name == raw {
			target := p
			return &target, nil
		}
	}

	guess, err := r.matchUser(ctx, raw, roster)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("raw", raw).
		Str("name", guess.name).
		Str("explanation", guess.explanation).
		Msg("Fuzzy matcher guess")
	return findByName(roster, guess.name), nil
}

// matchUser invokes the fuzzy name-match oracle with the raw reference and
// the comma-joined roster.
func (r *Resolver) matchUser(ctx context.Context, raw string, roster []game.Participant) (*userGuess, error) {
	names := make([]string, len(roster))
	for i, p := range roster {
		names[i] = p.Name
	}
	input := fmt.Sprintf("%s: %s", raw, strings.Join(names, ", "))

	r.mu.Lock()
	r.userLog.append(ai.RoleUser, input)
	msgs := r.userLog.snapshot()
	r.mu.Unlock()

	reply, err := r.provider.Complete(ctx, msgs, ai.Options{Temperature: 1, MaxTokens: 30})
	if err != nil {
		return nil, fmt.Errorf("user match failed: %w", err)
	}

	r.mu.Lock()
	r.userLog.append(ai.RoleAssistant, reply)
	r.mu.Unlock()

	name, explanation, found := strings.Cut(reply, "--")
	if !found || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadUserInterpretation, reply)
	}
	return &userGuess{
		name:        strings.TrimSpace(name),
		explanation: strings.TrimSpace(explanation),
	}, nil
}

func findByID(roster []game.Participant, id int64) *game.Participant {
	for _, p := range roster {
		if p.ID == id {
			target := p
			return &target
		}
	}
	return nil
}

func findByName(roster []game.Participant, name string) *game.Participant {
	for _, p := range roster {
		if p.Name == name {
			target := p
			return &target
		}
	}
	return nil
}
