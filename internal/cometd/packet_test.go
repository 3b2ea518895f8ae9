package cometd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandshakePacketShape verifies the exact handshake request shape.
func TestHandshakePacketShape(t *testing.T) {
	data, err := json.Marshal(handshakePacket())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "/meta/handshake", m["channel"])
	assert.Equal(t, "1.0", m["version"])
	assert.Equal(t, "1.0", m["minimumVersion"])
	assert.Equal(t, []any{"websocket"}, m["supportedConnectionTypes"])
	assert.Equal(t, map[string]any{"timeout": float64(60000), "interval": float64(0)}, m["advice"])

	// No id until the transport assigns one, and nothing serialized null.
	_, hasID := m["id"]
	assert.False(t, hasID, "id should be absent before send")
	for k, v := range m {
		assert.NotNil(t, v, "field %q must not serialize as null", k)
	}
}

// TestPacketOmitsAbsentOptionals verifies a minimal packet serializes only
// its channel.
func TestPacketOmitsAbsentOptionals(t *testing.T) {
	data, err := json.Marshal(&Packet{Channel: ChannelConnect})
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":"/meta/connect"}`, string(data))
}

// TestPacketPreservesUnknownFields verifies unknown keys survive a
// decode/encode round trip byte-for-byte.
func TestPacketPreservesUnknownFields(t *testing.T) {
	wire := `{"channel":"/chat/demo","clientId":"abc","timestamp":"2020-03-01T00:00:00Z","custom":{"nested":[1,2,3]}}`

	var p Packet
	require.NoError(t, json.Unmarshal([]byte(wire), &p))

	assert.Equal(t, ParseChannel("/chat/demo"), p.Channel)
	assert.Equal(t, "abc", p.ClientID)
	require.Contains(t, p.Extra, "timestamp")
	require.Contains(t, p.Extra, "custom")

	out, err := json.Marshal(&p)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(out))
}

// TestPacketKnownFieldsWinOverExtra verifies a colliding Extra key never
// clobbers a modeled field on output.
func TestPacketKnownFieldsWinOverExtra(t *testing.T) {
	p := &Packet{
		Channel: ChannelConnect,
		Extra: map[string]json.RawMessage{
			"channel": json.RawMessage(`"/bogus"`),
			"other":   json.RawMessage(`1`),
		},
	}

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":"/meta/connect","other":1}`, string(out))
}

// TestEmptyAdviceSerializesAsEmptyObject matters for the connect request,
// whose advice must be {}.
func TestEmptyAdviceSerializesAsEmptyObject(t *testing.T) {
	data, err := json.Marshal(&Advice{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestAdviceRoundTrip(t *testing.T) {
	wire := `{"timeout":30000,"interval":5,"reconnect":"retry","multiple-clients":true}`

	var a Advice
	require.NoError(t, json.Unmarshal([]byte(wire), &a))

	require.NotNil(t, a.Timeout)
	assert.Equal(t, uint64(30000), *a.Timeout)
	require.NotNil(t, a.Interval)
	assert.Equal(t, int64(5), *a.Interval)
	assert.Equal(t, ReconnectRetry, a.Reconnect)
	assert.Contains(t, a.Extra, "multiple-clients")

	out, err := json.Marshal(&a)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(out))
}

func TestChannelRoundTrip(t *testing.T) {
	for _, path := range []string{
		"/meta/handshake",
		"/meta/connect",
		"/meta/subscribe",
		"/service/player",
		"/chat/demo",
	} {
		assert.Equal(t, path, ParseChannel(path).String())
	}

	assert.True(t, ChannelHandshake.IsMeta())
	assert.True(t, ChannelConnect.IsMeta())
	assert.True(t, ChannelSubscribe.IsMeta())
	assert.False(t, ParseChannel("/service/player").IsMeta())
}

func TestConnectionTypeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"websocket",
		"long-polling",
		"callback-polling",
		"carrier-pigeon",
	} {
		assert.Equal(t, s, ParseConnectionType(s).String())
	}
}

func TestConnectPacketRequiresClientID(t *testing.T) {
	s := NewSession(nil)

	err := s.QueueConnect()
	assert.ErrorIs(t, err, ErrMissingClientID)

	s.setHandshakeResult("client-1")
	require.NoError(t, s.QueueConnect())

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.state.requestBuffer, 1)
	p := s.state.requestBuffer[0]
	assert.Equal(t, ChannelConnect, p.Channel)
	assert.Equal(t, "client-1", p.ClientID)
	assert.Equal(t, ConnectionTypeWebSocket, p.ConnectionType)
	require.NotNil(t, p.Advice)
}

func TestSendBufferedPacketsEmptyIsNoop(t *testing.T) {
	// A nil transport would panic if the empty flush touched it.
	s := NewSession(nil)
	assert.NoError(t, s.SendBufferedPackets())
}
