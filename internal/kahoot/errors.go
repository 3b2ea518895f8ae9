package kahoot

import "errors"

// Login errors
var (
	// ErrMissingName is returned when a client is created with an empty
	// player name.
	ErrMissingName = errors.New("player name is required")
)

// InvalidLoginError reports a login rejected by the game host (duplicate
// name, locked game, kicked player).
type InvalidLoginError struct {
	Response LoginResponse
}

func (e *InvalidLoginError) Error() string {
	msg := "login rejected"
	if e.Response.Description != "" {
		msg += ": " + e.Response.Description
	} else if e.Response.Error != "" {
		msg += ": " + e.Response.Error
	}
	return msg
}
