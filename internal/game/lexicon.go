// Package game implements the truth-or-dare game: the command and phase
// lexicon, the Game aggregate, and the phase transition engine.
package game

import "strings"

// Command is one of the closed set of game commands a player can issue.
type Command string

// Game commands. MISS is the explicit "no match" sentinel: any token that
// does not map to a known command normalizes to MISS instead of failing.
const (
	CommandStart        Command = "START"
	CommandFinish       Command = "FINISH"
	CommandConfirm      Command = "CONFIRM"
	CommandDeny         Command = "DENY"
	CommandJoin         Command = "JOIN"
	CommandEnlist       Command = "ENLIST"
	CommandLeave        Command = "LEAVE"
	CommandUsers        Command = "USERS"
	CommandStatus       Command = "STATUS"
	CommandChat         Command = "CHAT"
	CommandChooseVictim Command = "CHOOSE_VICTIM"
	CommandChoosePoison Command = "CHOOSE_POISON"
	CommandChooseOrdeal Command = "CHOOSE_ORDEAL"
	CommandSkip         Command = "SKIP"
	CommandCheckPlayers Command = "CHECK_PLAYERS"
	CommandCheckProber  Command = "CHECK_PROBER"
	CommandCheckVictim  Command = "CHECK_VICTIM"
	CommandPickProber   Command = "PICK_PROBER"
	CommandMiss         Command = "MISS"
)

// commands indexes every known command by its token.
var commands = map[string]Command{
	string(CommandStart):        CommandStart,
	string(CommandFinish):       CommandFinish,
	string(CommandConfirm):      CommandConfirm,
	string(CommandDeny):         CommandDeny,
	string(CommandJoin):         CommandJoin,
	string(CommandEnlist):       CommandEnlist,
	string(CommandLeave):        CommandLeave,
	string(CommandUsers):        CommandUsers,
	string(CommandStatus):       CommandStatus,
	string(CommandChat):         CommandChat,
	string(CommandChooseVictim): CommandChooseVictim,
	string(CommandChoosePoison): CommandChoosePoison,
	string(CommandChooseOrdeal): CommandChooseOrdeal,
	string(CommandSkip):         CommandSkip,
	string(CommandCheckPlayers): CommandCheckPlayers,
	string(CommandCheckProber):  CommandCheckProber,
	string(CommandCheckVictim):  CommandCheckVictim,
	string(CommandPickProber):   CommandPickProber,
	string(CommandMiss):         CommandMiss,
}

// ParseCommand maps a raw token onto the command lexicon. It is total:
// tokens are upper-cased and internal spaces become underscores, and any
// token that still doesn't match a known command returns CommandMiss.
func ParseCommand(token string) Command {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	normalized = strings.Join(strings.Fields(normalized), "_")
	if cmd, ok := commands[normalized]; ok {
		return cmd
	}
	return CommandMiss
}

// IsKnownCommand reports whether a raw token maps to a command other than
// the MISS sentinel. Used by the deterministic fast path to decide whether
// to fall through to the classifier.
func IsKnownCommand(token string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	normalized = strings.Join(strings.Fields(normalized), "_")
	cmd, ok := commands[normalized]
	return ok && cmd != CommandMiss
}

// Phase is the current state of the game session.
type Phase string

// Game phases.
const (
	PhaseIdle                 Phase = "IDLE"
	PhaseAwaitingProber       Phase = "AWAITING_PROBER"
	PhaseAwaitingVictim       Phase = "AWAITING_VICTIM"
	PhaseAwaitingPoison       Phase = "AWAITING_POISON"
	PhaseAwaitingOrdeal       Phase = "AWAITING_ORDEAL"
	PhaseAwaitingAcceptOrdeal Phase = "AWAITING_ACCEPT_ORDEAL"
	PhaseAwaitingProofs       Phase = "AWAITING_PROOFS"
	PhaseAwaitingAcceptProofs Phase = "AWAITING_ACCEPT_PROOFS"
)

// Poison is the challenge category a prober can pick for their victim.
type Poison string

// Challenge categories. The zero value means "not chosen yet".
const (
	PoisonNone  Poison = ""
	PoisonTruth Poison = "TRUTH"
	PoisonDare  Poison = "DARE"
	PoisonWYR   Poison = "WYR"
)

// ParsePoison maps free text onto a challenge category. Players phrase
// these loosely ("truth!", "would you rather..."), so matching is lenient.
func ParsePoison(text string) (Poison, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, "!.?")
	switch normalized {
	case "TRUTH":
		return PoisonTruth, true
	case "DARE":
		return PoisonDare, true
	case "WYR", "WOULD YOU RATHER", "WOULD_YOU_RATHER":
		return PoisonWYR, true
	}
	return PoisonNone, false
}
