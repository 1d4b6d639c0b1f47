package game

import "errors"

// ErrSessionTerminated ends a session early. It is returned when the player
// confirms they want to stop or stops answering the presence check. No
// summary is produced for the interrupted round.
var ErrSessionTerminated = errors.New("game: session terminated")

// ErrNoWords is returned when a session has no secret word left to play.
var ErrNoWords = errors.New("game: no secret words available")
