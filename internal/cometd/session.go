package cometd

import "sync"

// sessionState is the mutable per-session state. It is guarded by the
// Session mutex, which is never held across a transport call.
type sessionState struct {
	// clientID is empty until a successful handshake response and is only
	// ever overwritten by the next successful handshake.
	clientID string

	// isReconnect starts armed, is re-armed by every successful handshake,
	// and is consumed by the first successful connect that observes it.
	isReconnect bool

	// requestBuffer holds packets queued for the next flush.
	requestBuffer []*Packet
}

// Session exposes the protocol primitives available to application
// handlers: queueing and sending packets, building the meta-channel
// requests, and shutting the transport down. A Session is shared between
// the session loop and every spawned handler goroutine.
type Session struct {
	mu        sync.Mutex
	state     sessionState
	transport *Transport
}

// NewSession creates a session bound to the transport.
func NewSession(transport *Transport) *Session {
	return &Session{
		state:     sessionState{isReconnect: true},
		transport: transport,
	}
}

// QueuePacket pushes a packet onto the request buffer. It will not be sent
// before the next flush.
func (s *Session) QueuePacket(p *Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.requestBuffer = append(s.state.requestBuffer, p)
}

// SendBufferedPackets atomically drains the request buffer and sends the
// drained batch as one frame. An empty buffer is a no-op success.
func (s *Session) SendBufferedPackets() error {
	s.mu.Lock()
	packets := s.state.requestBuffer
	s.state.requestBuffer = nil
	s.mu.Unlock()

	if len(packets) == 0 {
		return nil
	}
	return s.transport.SendPackets(packets)
}

// SendPacket sends a single packet immediately as a one-element batch,
// bypassing the request buffer.
func (s *Session) SendPacket(p *Packet) error {
	return s.transport.SendPackets([]*Packet{p})
}

// SendHandshake sends a handshake request immediately.
func (s *Session) SendHandshake() error {
	return s.SendPacket(handshakePacket())
}

// QueueHandshake queues a handshake request for the next flush. Handshakes
// never require a client id; they establish it.
func (s *Session) QueueHandshake() {
	s.QueuePacket(handshakePacket())
}

// SendConnect sends a connect request immediately. Fails with
// ErrMissingClientID before a successful handshake.
func (s *Session) SendConnect() error {
	p, err := s.connectPacket()
	if err != nil {
		return err
	}
	return s.SendPacket(p)
}

// QueueConnect queues a connect request for the next flush. Fails with
// ErrMissingClientID before a successful handshake.
func (s *Session) QueueConnect() error {
	p, err := s.connectPacket()
	if err != nil {
		return err
	}
	s.QueuePacket(p)
	return nil
}

// Subscribe sends a subscription request for the channel path immediately.
func (s *Session) Subscribe(path string) error {
	clientID := s.ClientID()
	if clientID == "" {
		return ErrMissingClientID
	}

	return s.SendPacket(&Packet{
		Channel:      ChannelSubscribe,
		ClientID:     clientID,
		Subscription: ParseChannel(path),
	})
}

// ClientID returns a snapshot of the server-assigned client id, or the
// empty string before a successful handshake.
func (s *Session) ClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clientID
}

// Shutdown closes the session's transport gracefully.
func (s *Session) Shutdown() error {
	return s.transport.GracefulShutdown()
}

// setHandshakeResult stores the client id and re-arms the reconnect
// callback for the next successful connect.
func (s *Session) setHandshakeResult(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.clientID = clientID
	s.state.isReconnect = true
}

// consumeReconnect atomically tests and clears the reconnect flag.
func (s *Session) consumeReconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.isReconnect {
		return false
	}
	s.state.isReconnect = false
	return true
}

func handshakePacket() *Packet {
	timeout := uint64(60_000)
	interval := int64(0)
	return &Packet{
		Channel:                  ChannelHandshake,
		Version:                  "1.0",
		MinimumVersion:           "1.0",
		SupportedConnectionTypes: []ConnectionType{ConnectionTypeWebSocket},
		Advice:                   &Advice{Timeout: &timeout, Interval: &interval},
	}
}

func (s *Session) connectPacket() (*Packet, error) {
	clientID := s.ClientID()
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	return &Packet{
		Channel:        ChannelConnect,
		ClientID:       clientID,
		ConnectionType: ConnectionTypeWebSocket,
		Advice:         &Advice{},
	}, nil
}
