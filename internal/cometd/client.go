package cometd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/streamspace-dev/quizswarm/internal/logger"
)

// Client drives one Bayeux session over a WebSocket: it pumps inbound
// frames, walks the handshake/connect state machine and dispatches
// application packets to the handler.
type Client struct {
	session   *Session
	transport *Transport
	handler   Handler
	log       zerolog.Logger
}

// Connect dials the Bayeux endpoint, sends the initial handshake and
// returns the client ready to Run. The context bounds the dial only; the
// session itself lives until the connection closes.
func Connect(ctx context.Context, url string, handler Handler) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	transport := NewTransport(conn)
	c := &Client{
		session:   NewSession(transport),
		transport: transport,
		handler:   handler,
		log: logger.Cometd().With().
			Str("session_id", uuid.NewString()).
			Logger(),
	}

	if err := c.session.SendHandshake(); err != nil {
		transport.GracefulShutdown()
		return nil, err
	}

	c.log.Debug().Str("url", url).Msg("session opened, handshake sent")
	return c, nil
}

// Session returns the session handle shared with handler callbacks.
func (c *Client) Session() *Session {
	return c.session
}

// Run pumps the session until the connection ends. A close initiated by
// either side returns nil; transport failures return the error; every
// other error is surfaced to the handler and the loop continues.
func (c *Client) Run() error {
	for {
		batch, err := c.transport.NextPacketBatch()
		if err != nil {
			if errors.Is(err, ErrClientExited) {
				c.log.Debug().Msg("session closed")
				return nil
			}

			var protoErr *ProtocolError
			if errors.As(err, &protoErr) {
				c.log.Warn().Err(err).Msg("dropping malformed frame")
				go c.handler.OnError(c.session, err)
				continue
			}

			return err
		}

		c.processBatch(batch)
	}
}

// GracefulShutdown closes the session from outside the run loop.
func (c *Client) GracefulShutdown() error {
	return c.transport.GracefulShutdown()
}

// processBatch classifies each packet in order, then flushes everything the
// state machine queued as a single frame.
func (c *Client) processBatch(batch []*Packet) {
	for _, p := range batch {
		switch p.Channel {
		case ChannelHandshake:
			c.handleHandshakeResponse(p)
		case ChannelConnect:
			c.handleConnectResponse(p)
		case ChannelSubscribe:
			if !p.IsSuccessful() {
				// A rejected subscription means the client asked for a
				// channel it has no business on.
				panic(fmt.Sprintf("subscription rejected: %s", p.Error))
			}
		default:
			go c.handler.OnMessage(c.session, p)
		}
	}

	if err := c.session.SendBufferedPackets(); err != nil {
		go c.handler.OnError(c.session, err)
	}
}

func (c *Client) handleHandshakeResponse(p *Packet) {
	if !p.IsSuccessful() || p.ClientID == "" {
		c.log.Debug().Str("error", p.Error).Msg("handshake rejected, retrying")
		c.session.QueueHandshake()
		return
	}

	c.session.setHandshakeResult(p.ClientID)
	c.log.Debug().Str("client_id", p.ClientID).Msg("handshake accepted")

	if err := c.session.QueueConnect(); err != nil {
		go c.handler.OnError(c.session, err)
	}
}

func (c *Client) handleConnectResponse(p *Packet) {
	if p.Successful != nil && !*p.Successful {
		c.log.Debug().Str("error", p.Error).Msg("connect rejected, re-handshaking")
		c.session.QueueHandshake()
	} else if c.session.consumeReconnect() {
		go c.handler.OnReconnect(c.session)
	}

	// Every connect response, successful or not, gets a follow-up connect.
	// The server treats the outstanding connect as the session heartbeat;
	// under-sending stalls delivery.
	if err := c.session.QueueConnect(); err != nil {
		go c.handler.OnError(c.session, err)
	}
}
