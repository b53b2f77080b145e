package game

import "fmt"

// Participant is an externally issued chat identity. The Game references
// participants but never owns them; the chat adapter is the source of truth
// for who exists.
type Participant struct {
	ID   int64
	Name string
}

// Mention renders the participant as a mention token for outgoing messages.
func (p Participant) Mention() string {
	return fmt.Sprintf("<@%d>", p.ID)
}

// Game is the single mutable aggregate for one in-progress (or idle) game.
// All mutation goes through the transition engine; callers serialize access
// per chat (see internal/pkg/lock).
type Game struct {
	Players []Participant
	Phase   Phase
	Prober  *Participant
	Victim  *Participant
	Poison  Poison
	Ordeal  string

	// RoundID identifies the running round in logs and STATUS output.
	// Set at START, cleared at FINISH.
	RoundID string

	outgoing []string
}

// New creates an idle game with no players.
func New() *Game {
	return &Game{Phase: PhaseIdle}
}

// Say queues a user-facing message produced while processing an action.
func (g *Game) Say(format string, args ...any) {
	g.outgoing = append(g.outgoing, fmt.Sprintf(format, args...))
}

// DrainOutgoing returns all queued messages in FIFO order and empties the
// queue. The chat adapter calls this after each processed action.
func (g *Game) DrainOutgoing() []string {
	out := g.outgoing
	g.outgoing = nil
	return out
}

// HasPlayer reports whether the participant is currently in the game.
func (g *Game) HasPlayer(p Participant) bool {
	for _, player := range g.Players {
		if player.ID == p.ID {
			return true
		}
	}
	return false
}

// removePlayer deletes the participant from the player set. Reports whether
// the participant was present.
func (g *Game) removePlayer(p Participant) bool {
	for i, player := range g.Players {
		if player.ID == p.ID {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return true
		}
	}
	return false
}

// clearRound resets all per-round state. Phase is owned by the engine and
// is not touched here.
func (g *Game) clearRound() {
	g.Prober = nil
	g.Victim = nil
	g.Poison = PoisonNone
	g.Ordeal = ""
	g.RoundID = ""
}

// Action is a resolved, validated instruction: one inbound message folded
// into a command plus optional target and free-form choice. Constructed
// fresh per message and discarded once the transition completes.
type Action struct {
	Command Command
	Player  Participant
	Target  *Participant
	Choice  string
}

func (a *Action) String() string {
	if a.Target != nil {
		return fmt.Sprintf("player=%s command=%s target=%s", a.Player.Name, a.Command, a.Target.Name)
	}
	return fmt.Sprintf("player=%s command=%s", a.Player.Name, a.Command)
}
