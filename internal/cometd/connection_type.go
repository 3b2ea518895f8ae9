package cometd

// ConnectionType names a Bayeux transport. This client only advertises and
// uses ConnectionTypeWebSocket; the other values exist so server responses
// decode losslessly.
type ConnectionType string

const (
	ConnectionTypeWebSocket       ConnectionType = "websocket"
	ConnectionTypeLongPolling     ConnectionType = "long-polling"
	ConnectionTypeCallbackPolling ConnectionType = "callback-polling"
)

// ParseConnectionType converts a wire string into a ConnectionType.
func ParseConnectionType(s string) ConnectionType {
	return ConnectionType(s)
}

// String returns the wire form of the connection type.
func (c ConnectionType) String() string {
	return string(c)
}
