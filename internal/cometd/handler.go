package cometd

// Handler receives session callbacks. Callbacks are dispatched on their own
// goroutines and may re-enter the session freely: subscribe, publish or
// shut down from within any callback. They run concurrently with the
// session loop and with each other, so an effect of one callback may be
// observed after a later inbound batch has already been processed.
type Handler interface {
	// OnError is invoked for recoverable session errors. The loop keeps
	// running after it returns.
	OnError(s *Session, err error)

	// OnReconnect fires once per successful handshake+connect cycle, after
	// the session is established.
	OnReconnect(s *Session)

	// OnMessage receives every packet on a non-meta channel.
	OnMessage(s *Session, p *Packet)
}

// NopHandler implements Handler with no-ops. Embed it to pick only the
// callbacks you care about.
type NopHandler struct{}

func (NopHandler) OnError(*Session, error)     {}
func (NopHandler) OnReconnect(*Session)        {}
func (NopHandler) OnMessage(*Session, *Packet) {}
