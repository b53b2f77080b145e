package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-dare-bot/internal/ai"
	"telegram-dare-bot/internal/game"
)

var (
	alice  = game.Participant{ID: 1, Name: "Alice"}
	bob    = game.Participant{ID: 2, Name: "Bob"}
	roster = []game.Participant{alice, bob}
)

// scriptedProvider replays canned oracle replies in order and records every
// request it saw.
type scriptedProvider struct {
	replies []string
	err     error
	calls   [][]ai.Message
}

func (p *scriptedProvider) Complete(_ context.Context, msgs []ai.Message, _ ai.Options) (string, error) {
	p.calls = append(p.calls, msgs)
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", errors.New("scripted provider exhausted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func newResolver(p ai.Provider) *Resolver {
	return New("dog-bot", p, 0)
}

func TestExactCommand(t *testing.T) {
	p := &scriptedProvider{}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot JOIN", alice, roster)
	require.NoError(t, err)
	require.False(t, res.NoAction())
	assert.Equal(t, game.CommandJoin, res.Action.Command)
	assert.Equal(t, alice, res.Action.Player)
	assert.Nil(t, res.Action.Target)
	// The fast path never touches the oracle.
	assert.Empty(t, p.calls)
}

func TestExactCommandCaseInsensitive(t *testing.T) {
	r := newResolver(&scriptedProvider{})

	res, err := r.Resolve(context.Background(), "dog-bot join", alice, roster)
	require.NoError(t, err)
	assert.Equal(t, game.CommandJoin, res.Action.Command)
}

func TestExactCommandWithMention(t *testing.T) {
	p := &scriptedProvider{}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot CHOOSE_VICTIM <@2>", alice, roster)
	require.NoError(t, err)
	require.NotNil(t, res.Action.Target)
	assert.Equal(t, bob, *res.Action.Target)
	assert.Empty(t, p.calls)
}

func TestExactCommandUnknownMentionID(t *testing.T) {
	r := newResolver(&scriptedProvider{})

	res, err := r.Resolve(context.Background(), "dog-bot ENLIST <@999>", alice, roster)
	require.NoError(t, err)
	assert.Equal(t, game.CommandEnlist, res.Action.Command)
	// A mention of someone not in the roster resolves to no target.
	assert.Nil(t, res.Action.Target)
}

// TestUnknownTokenFallsThrough verifies that an exact-looking message with
// an unmapped command token goes to the classifier instead of failing.
func TestUnknownTokenFallsThrough(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"JOIN -- the player wants in",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot frolic", alice, roster)
	require.NoError(t, err)
	assert.Equal(t, game.CommandJoin, res.Action.Command)
	assert.Len(t, p.calls, 1)
}

func TestClassifierWithExactRosterName(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE_VICTIM:Bob -- the player is challenging Bob",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot I pick bob for the next one", alice, roster)
	require.NoError(t, err)
	require.NotNil(t, res.Action.Target)
	assert.Equal(t, bob, *res.Action.Target)
	// Exact roster match: no second oracle call.
	assert.Len(t, p.calls, 1)
}

func TestClassifierNormalizesSpacedCommand(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE VICTIM:Bob -- spaces instead of underscores",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot bob's turn", alice, roster)
	require.NoError(t, err)
	assert.Equal(t, game.CommandChooseVictim, res.Action.Command)
}

func TestClassifierMentionTarget(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE_VICTIM:<@2> -- mention passed through",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot get him", alice, roster)
	require.NoError(t, err)
	require.NotNil(t, res.Action.Target)
	assert.Equal(t, bob, *res.Action.Target)
	assert.Len(t, p.calls, 1)
}

func TestClassifierPoisonChoice(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE_POISON:truth -- the player wants a truth",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot truth please", bob, roster)
	require.NoError(t, err)
	assert.Equal(t, game.CommandChoosePoison, res.Action.Command)
	assert.Equal(t, "truth", res.Action.Choice)
	assert.Nil(t, res.Action.Target)
	// The segment is a choice, never a name to fuzzy-match.
	assert.Len(t, p.calls, 1)
}

// TestMisspelledCommandIsMiss is the spec's fourth scenario: an unknown
// classifier token normalizes to MISS and yields a chat reply, no action.
func TestMisspelledCommandIsMiss(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOSE_VICTIM -- I picked them",
		"Woof. Nice try, maybe learn the rules first?",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot chose em", alice, roster)
	require.NoError(t, err)
	assert.True(t, res.NoAction())
	assert.Equal(t, "Woof. Nice try, maybe learn the rules first?", res.Reply)
	// Classifier call plus the personality-scoped chat call.
	require.Len(t, p.calls, 2)
	// The MISS nudge rides along as an extra system message.
	assert.Equal(t, ai.RoleSystem, p.calls[1][1].Role)
}

func TestChatShortCircuit(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHAT -- the player just wants to talk",
		"Oh you know, just napping and judging people.",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot how's life?", alice, roster)
	require.NoError(t, err)
	assert.True(t, res.NoAction())
	assert.NotEmpty(t, res.Reply)
}

func TestBadCommandInterpretation(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"I have no idea what that means",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot hmmm", alice, roster)
	require.ErrorIs(t, err, ErrBadCommandInterpretation)
	assert.Nil(t, res)
}

func TestFuzzyMatch(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE_VICTIM:bobby -- the player means bobby",
		"Bob -- Bob is the closest name to bobby",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot I challenge bobby", alice, roster)
	require.NoError(t, err)
	require.NotNil(t, res.Action.Target)
	assert.Equal(t, bob, *res.Action.Target)
	require.Len(t, p.calls, 2)
	// The matcher request carries the raw name and the comma-joined roster.
	matchReq := p.calls[1][len(p.calls[1])-1]
	assert.Equal(t, "bobby: Alice, Bob", matchReq.Content)
}

// TestFuzzyMatchNameNotInRoster is the spec's fifth scenario: the matcher
// names someone who isn't actually in the roster, which resolves to no
// target rather than an error.
func TestFuzzyMatchNameNotInRoster(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE_VICTIM:chuck -- the player means chuck",
		"Chuck -- closest name",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot get chuck", alice, roster)
	require.NoError(t, err)
	require.False(t, res.NoAction())
	assert.Nil(t, res.Action.Target)
}

func TestBadUserInterpretation(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		"CHOOSE_VICTIM:zzz -- the player means someone",
		"",
	}}
	r := newResolver(p)

	res, err := r.Resolve(context.Background(), "dog-bot get zzz", alice, roster)
	require.ErrorIs(t, err, ErrBadUserInterpretation)
	assert.Nil(t, res)
}

func TestProviderFailure(t *testing.T) {
	p := &scriptedProvider{err: errors.New("boom")}
	r := newResolver(p)

	_, err := r.Resolve(context.Background(), "dog-bot something vague", alice, roster)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadCommandInterpretation)
}

// TestTranscriptIsBounded drives many classifications through a small
// transcript limit and checks the oracle request stops growing.
func TestTranscriptIsBounded(t *testing.T) {
	limit := 6
	p := &scriptedProvider{}
	r := New("dog-bot", p, limit)
	for i := 0; i < 30; i++ {
		p.replies = append(p.replies, "JOIN -- sure")
	}

	for i := 0; i < 30; i++ {
		_, err := r.Resolve(context.Background(), "dog-bot lemme in", alice, roster)
		require.NoError(t, err)
	}

	last := p.calls[len(p.calls)-1]
	// System prompt plus at most `limit` retained exchange messages.
	assert.LessOrEqual(t, len(last), limit+1)
	assert.Equal(t, ai.RoleSystem, last[0].Role)
}

func TestParseCommandGuessShapes(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantCmd game.Command
		wantTgt string
		wantErr bool
	}{
		{"plain", "JOIN -- wants in", game.CommandJoin, "", false},
		{"with target", "ENLIST:Carol -- adding carol", game.CommandEnlist, "Carol", false},
		{"unknown command", "DANCE -- no clue", game.CommandMiss, "", false},
		{"no dashes", "JOIN wants in", "", "", true},
		{"empty head", " -- just an explanation", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guess, err := parseCommandGuess(tt.reply)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadCommandInterpretation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCmd, guess.command)
			assert.Equal(t, tt.wantTgt, guess.target)
		})
	}
}
