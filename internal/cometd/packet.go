package cometd

import (
	"encoding/json"

	"github.com/streamspace-dev/quizswarm/internal/jsonutil"
)

// Packet is the Bayeux wire unit. A frame in either direction is a JSON
// array of packets. Channel is the only required field; every other field
// is omitted from the wire when unset, never serialized as null. Keys the
// model does not recognize are preserved in Extra and serialize back out.
type Packet struct {
	Channel                  Channel          `json:"channel"`
	ClientID                 string           `json:"clientId,omitempty"`
	ID                       string           `json:"id,omitempty"`
	ConnectionType           ConnectionType   `json:"connectionType,omitempty"`
	SupportedConnectionTypes []ConnectionType `json:"supportedConnectionTypes,omitempty"`
	Version                  string           `json:"version,omitempty"`
	MinimumVersion           string           `json:"minimumVersion,omitempty"`
	Advice                   *Advice          `json:"advice,omitempty"`
	Subscription             Channel          `json:"subscription,omitempty"`
	Successful               *bool            `json:"successful,omitempty"`
	Error                    string           `json:"error,omitempty"`
	Data                     json.RawMessage  `json:"data,omitempty"`
	Ext                      json.RawMessage  `json:"ext,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// IsSuccessful reports whether the packet is a response marked successful.
func (p *Packet) IsSuccessful() bool {
	return p.Successful != nil && *p.Successful
}

// MarshalJSON emits the known fields plus any preserved unknown keys.
func (p *Packet) MarshalJSON() ([]byte, error) {
	type plain Packet
	return jsonutil.MarshalExtra((*plain)(p), p.Extra)
}

// UnmarshalJSON decodes the known fields and stashes everything else in
// Extra.
func (p *Packet) UnmarshalJSON(data []byte) error {
	type plain Packet
	extra, err := jsonutil.UnmarshalExtra(data, (*plain)(p))
	if err != nil {
		return err
	}
	p.Extra = extra
	return nil
}
