package cometd

import (
	"encoding/json"

	"github.com/streamspace-dev/quizswarm/internal/jsonutil"
)

// Reconnect is the server's advised recovery action.
type Reconnect string

const (
	ReconnectRetry     Reconnect = "retry"
	ReconnectHandshake Reconnect = "handshake"
	ReconnectNone      Reconnect = "none"
)

// Advice carries session tuning hints exchanged on meta channels. All fields
// are optional; absent fields are omitted on the wire, and unknown keys
// round-trip through Extra.
type Advice struct {
	Timeout     *uint64   `json:"timeout,omitempty"`
	Reconnect   Reconnect `json:"reconnect,omitempty"`
	Interval    *int64    `json:"interval,omitempty"`
	MaxInterval *int64    `json:"maxInterval,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON emits the known fields plus any preserved unknown keys.
func (a *Advice) MarshalJSON() ([]byte, error) {
	type plain Advice
	return jsonutil.MarshalExtra((*plain)(a), a.Extra)
}

// UnmarshalJSON decodes the known fields and stashes everything else in
// Extra.
func (a *Advice) UnmarshalJSON(data []byte) error {
	type plain Advice
	extra, err := jsonutil.UnmarshalExtra(data, (*plain)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}
