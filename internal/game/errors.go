package game

import "fmt"

// StateError marks errors caused by a player attempting something illegal
// in the current phase or violating a state precondition. They are surfaced
// to the chat verbatim and are never fatal to the process.
type StateError interface {
	error
	stateError()
}

// NoSuchMappingError is returned when there is no transition from the
// current phase for the issued command.
type NoSuchMappingError struct {
	Phase   Phase
	Command Command
}

func (e *NoSuchMappingError) Error() string {
	return fmt.Sprintf("there is no move from %s for command %s", e.Phase, e.Command)
}

func (e *NoSuchMappingError) stateError() {}

// NotEnoughPlayersError is returned when a game cannot start or continue
// because too few players have joined.
type NotEnoughPlayersError struct {
	Have int
	Need int
}

func (e *NotEnoughPlayersError) Error() string {
	return fmt.Sprintf("not enough players to play: have %d, need %d", e.Have, e.Need)
}

func (e *NotEnoughPlayersError) stateError() {}

// AlreadyJoinedError is returned when a player who is already in the game
// tries to join (or be enlisted) again.
type AlreadyJoinedError struct {
	Player Participant
}

func (e *AlreadyJoinedError) Error() string {
	return fmt.Sprintf("%s has already joined the game", e.Player.Name)
}

func (e *AlreadyJoinedError) stateError() {}

// NotJoinedError is returned when an action requires a player to be in the
// game and they are not.
type NotJoinedError struct {
	Player Participant
}

func (e *NotJoinedError) Error() string {
	return fmt.Sprintf("%s is not in the game", e.Player.Name)
}

func (e *NotJoinedError) stateError() {}

// AlreadyHaveProberError is returned when a prober is picked while one is
// already set.
type AlreadyHaveProberError struct {
	Prober Participant
}

func (e *AlreadyHaveProberError) Error() string {
	return fmt.Sprintf("there is already a prober selected: %s", e.Prober.Name)
}

func (e *AlreadyHaveProberError) stateError() {}
