package game

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultMinPlayers is the minimum player count required to start or
// continue a round when no override is configured.
const DefaultMinPlayers = 1

// Engine executes resolved actions against a Game by looking up the legal
// handler for (phase, command) in the transition table and committing the
// phase it returns. Handlers validate all preconditions before mutating, so
// a rejected action leaves the Game untouched.
type Engine struct {
	minPlayers int
}

// NewEngine creates an engine. minPlayers values below one fall back to
// DefaultMinPlayers.
func NewEngine(minPlayers int) *Engine {
	if minPlayers < 1 {
		minPlayers = DefaultMinPlayers
	}
	return &Engine{minPlayers: minPlayers}
}

// transitionFunc applies one command's effect and returns the next phase.
type transitionFunc func(e *Engine, g *Game, a *Action) (Phase, error)

// transitions is the full (phase, command) table. STATUS is deliberately
// absent: it is handled uniformly in every phase and reports this table's
// keys, so it never needs an entry of its own.
var transitions = map[Phase]map[Command]transitionFunc{
	PhaseIdle: {
		CommandStart:  (*Engine).tryToStartGame,
		CommandJoin:   (*Engine).joinGame,
		CommandEnlist: (*Engine).enlistPlayer,
		CommandLeave:  (*Engine).leaveGame,
		CommandUsers:  (*Engine).listPlayers,
	},
	PhaseAwaitingProber: {
		CommandPickProber:   (*Engine).pickProber,
		CommandCheckPlayers: (*Engine).checkPlayers,
		CommandJoin:         (*Engine).joinGame,
		CommandLeave:        (*Engine).leaveGame,
		CommandUsers:        (*Engine).listPlayers,
		CommandFinish:       (*Engine).finishGame,
	},
	PhaseAwaitingVictim: {
		CommandChooseVictim: (*Engine).chooseVictim,
		CommandCheckProber:  (*Engine).checkProber,
		CommandCheckPlayers: (*Engine).checkPlayers,
		CommandJoin:         (*Engine).joinGame,
		CommandLeave:        (*Engine).leaveGame,
		CommandUsers:        (*Engine).listPlayers,
		CommandFinish:       (*Engine).finishGame,
	},
	PhaseAwaitingPoison: {
		CommandChoosePoison: (*Engine).choosePoison,
		CommandCheckProber:  (*Engine).checkProber,
		CommandCheckVictim:  (*Engine).checkVictim,
		CommandJoin:         (*Engine).joinGame,
		CommandLeave:        (*Engine).leaveGame,
		CommandUsers:        (*Engine).listPlayers,
		CommandFinish:       (*Engine).finishGame,
	},
	PhaseAwaitingOrdeal: {
		CommandChooseOrdeal: (*Engine).chooseOrdeal,
		CommandCheckProber:  (*Engine).checkProber,
		CommandCheckVictim:  (*Engine).checkVictim,
		CommandJoin:         (*Engine).joinGame,
		CommandLeave:        (*Engine).leaveGame,
		CommandUsers:        (*Engine).listPlayers,
		CommandFinish:       (*Engine).finishGame,
	},
	PhaseAwaitingAcceptOrdeal: {
		CommandConfirm:     (*Engine).acceptOrdeal,
		CommandCheckVictim: (*Engine).checkVictim,
		CommandJoin:        (*Engine).joinGame,
		CommandLeave:       (*Engine).leaveGame,
		CommandUsers:       (*Engine).listPlayers,
		CommandFinish:      (*Engine).finishGame,
	},
	PhaseAwaitingProofs: {
		CommandConfirm:     (*Engine).provideProofs,
		CommandCheckProber: (*Engine).checkProber,
		CommandCheckVictim: (*Engine).checkVictim,
		CommandJoin:        (*Engine).joinGame,
		CommandLeave:       (*Engine).leaveGame,
		CommandUsers:       (*Engine).listPlayers,
		CommandFinish:      (*Engine).finishGame,
	},
	PhaseAwaitingAcceptProofs: {
		CommandConfirm:     (*Engine).acceptProofs,
		CommandCheckVictim: (*Engine).checkVictim,
		CommandJoin:        (*Engine).joinGame,
		CommandLeave:       (*Engine).leaveGame,
		CommandUsers:       (*Engine).listPlayers,
		CommandFinish:      (*Engine).finishGame,
	},
}

// LegalCommands returns the commands with a transition from the given
// phase, sorted for stable output. STATUS reports exactly this list.
func LegalCommands(phase Phase) []Command {
	table := transitions[phase]
	cmds := make([]Command, 0, len(table))
	for cmd := range table {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i] < cmds[j] })
	return cmds
}

// Process executes one resolved action against the game. State errors are
// returned for the caller to surface to the chat; the game is unchanged
// when an error is returned.
func (e *Engine) Process(g *Game, a *Action) error {
	if a.Command == CommandStatus {
		e.reportStatus(g, a)
		return nil
	}

	fn, ok := transitions[g.Phase][a.Command]
	if !ok {
		return &NoSuchMappingError{Phase: g.Phase, Command: a.Command}
	}

	next, err := fn(e, g, a)
	if err != nil {
		return err
	}

	log.Debug().
		Str("command", string(a.Command)).
		Str("from", string(g.Phase)).
		Str("to", string(next)).
		Int64("player_id", a.Player.ID).
		Msg("Transition committed")

	g.Phase = next
	return nil
}

// reportStatus answers STATUS in any phase. The legal-move list is derived
// from the transition table so it can never drift from what Process accepts.
func (e *Engine) reportStatus(g *Game, a *Action) {
	g.Say("%s wants to know the status of the game", a.Player.Mention())

	cmds := LegalCommands(g.Phase)
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = string(cmd)
	}
	g.Say("The game is %s, and the available moves are: %s", g.Phase, strings.Join(names, ", "))

	if len(g.Players) > 0 {
		g.Say("Current players: %s", mentionList(g.Players))
	}
	if g.RoundID != "" {
		g.Say("Round %s", g.RoundID)
	}
	if g.Prober != nil {
		g.Say("The prober is %s", g.Prober.Mention())
	}
	if g.Victim != nil {
		g.Say("The victim is %s", g.Victim.Mention())
	}
	if g.Poison != PoisonNone {
		g.Say("The poison is %s", g.Poison)
	}
	if g.Ordeal != "" {
		g.Say("The ordeal is '%s'", g.Ordeal)
	}
}

func (e *Engine) tryToStartGame(g *Game, a *Action) (Phase, error) {
	if len(g.Players) < e.minPlayers {
		return g.Phase, &NotEnoughPlayersError{Have: len(g.Players), Need: e.minPlayers}
	}
	g.RoundID = uuid.NewString()
	g.Say("%s started the game! Come join in for some spicy fun!", a.Player.Mention())
	return PhaseAwaitingProber, nil
}

func (e *Engine) finishGame(g *Game, a *Action) (Phase, error) {
	g.clearRound()
	g.Say("%s ended the game! Start a new one to get it going again!", a.Player.Mention())
	return PhaseIdle, nil
}

func (e *Engine) joinGame(g *Game, a *Action) (Phase, error) {
	if g.HasPlayer(a.Player) {
		return g.Phase, &AlreadyJoinedError{Player: a.Player}
	}
	g.Players = append(g.Players, a.Player)
	g.Say("%s has joined the game! Give 'em hell!!", a.Player.Mention())
	return g.Phase, nil
}

func (e *Engine) enlistPlayer(g *Game, a *Action) (Phase, error) {
	if a.Target == nil {
		g.Say("%s, who do you want to enlist? I couldn't tell.", a.Player.Mention())
		return g.Phase, nil
	}
	if g.HasPlayer(*a.Target) {
		return g.Phase, &AlreadyJoinedError{Player: *a.Target}
	}
	g.Players = append(g.Players, *a.Target)
	g.Say("%s has been enlisted into the game by %s!", a.Target.Mention(), a.Player.Mention())
	return g.Phase, nil
}

func (e *Engine) leaveGame(g *Game, a *Action) (Phase, error) {
	if !g.HasPlayer(a.Player) {
		return g.Phase, &NotJoinedError{Player: a.Player}
	}
	g.removePlayer(a.Player)
	g.Say("%s has left the game! Guess they couldn't handle it...", a.Player.Mention())
	return g.Phase, nil
}

func (e *Engine) listPlayers(g *Game, a *Action) (Phase, error) {
	g.Say("%s asked who is playing.", a.Player.Mention())
	if len(g.Players) == 0 {
		g.Say("Nobody has joined yet.")
		return g.Phase, nil
	}
	g.Say("Current players are: %s.", mentionList(g.Players))
	return g.Phase, nil
}

// checkPlayers is an idempotent liveness probe: if the player count has
// dropped below the minimum, the round ends.
func (e *Engine) checkPlayers(g *Game, a *Action) (Phase, error) {
	g.Say("%s checked whether there are enough players.", a.Player.Mention())
	if len(g.Players) < e.minPlayers {
		g.Say("Not enough players (%d/%d) to continue. Ending the game.", len(g.Players), e.minPlayers)
		g.clearRound()
		return PhaseIdle, nil
	}
	return g.Phase, nil
}

// checkProber reverts to prober selection if the current prober has left
// the player set (disconnected, rage-quit, and so on).
func (e *Engine) checkProber(g *Game, a *Action) (Phase, error) {
	g.Say("%s checked on the prober.", a.Player.Mention())
	if g.Prober != nil && g.HasPlayer(*g.Prober) {
		g.Say("The prober %s is still in the game.", g.Prober.Mention())
		return g.Phase, nil
	}
	if g.Prober != nil {
		g.Say("The current prober %s bailed. Pick a new one!", g.Prober.Mention())
	}
	g.Prober = nil
	return PhaseAwaitingProber, nil
}

// checkVictim reverts to victim selection if the current victim has left,
// clearing the poison chosen for them along the way.
func (e *Engine) checkVictim(g *Game, a *Action) (Phase, error) {
	g.Say("%s checked on the victim.", a.Player.Mention())
	if g.Victim != nil && g.HasPlayer(*g.Victim) {
		g.Say("The victim %s is still in the game.", g.Victim.Mention())
		return g.Phase, nil
	}
	if g.Victim != nil {
		g.Say("The current victim %s bailed. Choose a new one!", g.Victim.Mention())
	}
	g.Victim = nil
	g.Poison = PoisonNone
	g.Ordeal = ""
	return PhaseAwaitingVictim, nil
}

// pickProber sets the prober from an explicit target when given, otherwise
// uniformly at random among the players.
func (e *Engine) pickProber(g *Game, a *Action) (Phase, error) {
	if g.Prober != nil {
		return g.Phase, &AlreadyHaveProberError{Prober: *g.Prober}
	}
	if a.Target != nil {
		if !g.HasPlayer(*a.Target) {
			return g.Phase, &NotJoinedError{Player: *a.Target}
		}
		if g.Victim != nil && a.Target.ID == g.Victim.ID {
			g.Say("%s is the one being challenged, they can't probe too. Pick somebody else!", a.Target.Mention())
			return g.Phase, nil
		}
		prober := *a.Target
		g.Prober = &prober
		g.Say("%s is the new prober!", g.Prober.Mention())
		return PhaseAwaitingVictim, nil
	}
	// Random pick never lands on the current victim.
	candidates := make([]Participant, 0, len(g.Players))
	for _, p := range g.Players {
		if g.Victim == nil || p.ID != g.Victim.ID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) < e.minPlayers {
		return g.Phase, &NotEnoughPlayersError{Have: len(candidates), Need: e.minPlayers}
	}
	prober := candidates[rand.Intn(len(candidates))]
	g.Prober = &prober
	g.Say("Choosing a new prober...and it's %s!", g.Prober.Mention())
	return PhaseAwaitingVictim, nil
}

func (e *Engine) chooseVictim(g *Game, a *Action) (Phase, error) {
	if a.Target == nil {
		g.Say("%s, who are you challenging? I couldn't tell.", a.Player.Mention())
		return g.Phase, nil
	}
	if !g.HasPlayer(*a.Target) {
		return g.Phase, &NotJoinedError{Player: *a.Target}
	}
	if g.Prober != nil && a.Target.ID == g.Prober.ID {
		g.Say("%s, you can't challenge yourself. Pick somebody else!", a.Player.Mention())
		return g.Phase, nil
	}
	victim := *a.Target
	g.Victim = &victim
	g.Say("%s has challenged you, %s! Truth or Dare?!", a.Player.Mention(), g.Victim.Mention())
	return PhaseAwaitingPoison, nil
}

func (e *Engine) choosePoison(g *Game, a *Action) (Phase, error) {
	poison, ok := ParsePoison(a.Choice)
	if !ok {
		g.Say("%s, is that truth, dare, or would-you-rather? Say it plainly.", a.Player.Mention())
		return g.Phase, nil
	}
	g.Poison = poison
	g.Say("%s chose %s!", a.Player.Mention(), poison)
	return PhaseAwaitingOrdeal, nil
}

func (e *Engine) chooseOrdeal(g *Game, a *Action) (Phase, error) {
	if strings.TrimSpace(a.Choice) == "" {
		g.Say("%s, what's the challenge? Spell it out for me.", a.Player.Mention())
		return g.Phase, nil
	}
	g.Ordeal = strings.TrimSpace(a.Choice)
	if g.Victim != nil {
		g.Say("%s challenged %s with '%s'!", a.Player.Mention(), g.Victim.Mention(), g.Ordeal)
	} else {
		g.Say("%s set the challenge: '%s'!", a.Player.Mention(), g.Ordeal)
	}
	return PhaseAwaitingAcceptOrdeal, nil
}

func (e *Engine) acceptOrdeal(g *Game, a *Action) (Phase, error) {
	if g.Prober != nil {
		g.Say("%s accepted %s's challenge!", a.Player.Mention(), g.Prober.Mention())
	} else {
		g.Say("%s accepted the challenge!", a.Player.Mention())
	}
	return PhaseAwaitingProofs, nil
}

func (e *Engine) provideProofs(g *Game, a *Action) (Phase, error) {
	g.Say("%s provided proof!", a.Player.Mention())
	return PhaseAwaitingAcceptProofs, nil
}

// acceptProofs closes the round: the victim takes over as prober and the
// round-specific picks are cleared.
func (e *Engine) acceptProofs(g *Game, a *Action) (Phase, error) {
	if g.Victim == nil {
		// Victim vanished without a CHECK_VICTIM probe. Recover the same way.
		return e.checkVictim(g, a)
	}
	g.Say("%s accepted %s's proof!", a.Player.Mention(), g.Victim.Mention())
	prober := *g.Victim
	g.Prober = &prober
	g.Victim = nil
	g.Poison = PoisonNone
	g.Ordeal = ""
	g.Say("Now it's %s's turn to pick a victim!", g.Prober.Mention())
	return PhaseAwaitingVictim, nil
}

func mentionList(players []Participant) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = p.Mention()
	}
	return strings.Join(parts, " | ")
}
