package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a game session has not been opened.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuestionSetNotFound indicates the question set could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrKeyNotFound is returned by stores when a key has no value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrBlocked matches every BlockedError.
	ErrBlocked = errors.New("action blocked")
	// ErrUnknownOutcome indicates an outcome the action does not accept.
	ErrUnknownOutcome = errors.New("unknown outcome")
)

// BlockedError reports an action that is not legal in the current stage.
// The state is left untouched.
type BlockedError struct {
	Action Action
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s blocked: %s", e.Action, e.Reason)
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// Blocked builds a BlockedError.
func Blocked(action Action, reason string) error {
	return &BlockedError{Action: action, Reason: reason}
}
