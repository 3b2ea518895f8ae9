package kahoot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamspace-dev/quizswarm/internal/cometd"
	"github.com/streamspace-dev/quizswarm/internal/kahoot/challenge"
	"github.com/streamspace-dev/quizswarm/internal/logger"
)

// loginDelay is how long to wait after the session establishes before
// sending the login. The host rejects logins that arrive faster than
// ~500ms after the connect; one second is the most compatible observed
// value.
const loginDelay = 1000 * time.Millisecond

// Client is one player in a live quiz.
type Client struct {
	inner   *cometd.Client
	handler *bayeuxHandler
}

// Connect solves the challenge for the game code, opens the Bayeux session
// and returns a client ready to Run. The context bounds the challenge
// probe and the dial.
func Connect(ctx context.Context, code, name string, handler Handler) (*Client, error) {
	return connectWithChallengeClient(ctx, challenge.NewClient(), code, name, handler)
}

func connectWithChallengeClient(ctx context.Context, cc *challenge.Client, code, name string, handler Handler) (*Client, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	token, err := cc.GetToken(ctx, code)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("wss://kahoot.it/cometd/%s/%s", code, token)
	bh := newBayeuxHandler(code, name, handler)

	inner, err := cometd.Connect(ctx, url, bh)
	if err != nil {
		return nil, err
	}

	return &Client{inner: inner, handler: bh}, nil
}

// Run drives the session until it ends. A rejected login surfaces as
// *InvalidLoginError after the shutdown it triggers.
func (c *Client) Run() error {
	err := c.inner.Run()
	if exitErr := c.handler.takeExitError(); exitErr != nil {
		return exitErr
	}
	return err
}

// Shutdown leaves the game.
func (c *Client) Shutdown() error {
	return c.inner.GracefulShutdown()
}

// LoginResponse is the host's answer on the controller channel to a login
// attempt.
type LoginResponse struct {
	Error       string `json:"error,omitempty"`
	Description string `json:"description,omitempty"`
	CID         string `json:"cid,omitempty"`
}

// decodeLoginResponse returns the login response carried in controller
// packet data, or false when the data is something else.
func decodeLoginResponse(data json.RawMessage) (*LoginResponse, bool) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Type != "loginResponse" {
		return nil, false
	}

	var res LoginResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// bayeuxHandler adapts the game protocol onto the Bayeux callback surface.
type bayeuxHandler struct {
	code    string
	name    string
	handler Handler
	log     zerolog.Logger

	// exitErr records a fatal game-level error (rejected login) so Run can
	// surface it after the shutdown it triggered completes.
	exitMu  sync.Mutex
	exitErr error
}

func newBayeuxHandler(code, name string, handler Handler) *bayeuxHandler {
	return &bayeuxHandler{
		code:    code,
		name:    name,
		handler: handler,
		log: logger.Kahoot().With().
			Str("code", code).
			Str("name", name).
			Logger(),
	}
}

func (h *bayeuxHandler) session(s *cometd.Session) *Session {
	return &Session{bayeux: s, code: h.code, name: h.name}
}

func (h *bayeuxHandler) setExitError(err error) {
	h.exitMu.Lock()
	defer h.exitMu.Unlock()
	h.exitErr = err
}

func (h *bayeuxHandler) takeExitError() error {
	h.exitMu.Lock()
	defer h.exitMu.Unlock()
	err := h.exitErr
	h.exitErr = nil
	return err
}

// OnReconnect waits out the login delay and registers the player.
func (h *bayeuxHandler) OnReconnect(s *cometd.Session) {
	ks := h.session(s)
	time.Sleep(loginDelay)
	if err := ks.Login(h.name); err != nil {
		h.handler.OnError(ks, err)
	}
}

// OnMessage routes service-channel packets to the typed game callbacks.
func (h *bayeuxHandler) OnMessage(s *cometd.Session, p *cometd.Packet) {
	ks := h.session(s)

	switch p.Channel.String() {
	case controllerChannel:
		h.handleController(ks, p)
	case statusChannel:
		h.log.Debug().RawJSON("data", nonEmptyJSON(p.Data)).Msg("status packet")
	case playerChannel:
		h.handlePlayer(ks, p)
	default:
		h.log.Debug().Str("channel", p.Channel.String()).Msg("unexpected channel")
	}
}

// OnError forwards session errors to the game handler.
func (h *bayeuxHandler) OnError(s *cometd.Session, err error) {
	h.handler.OnError(h.session(s), err)
}

func (h *bayeuxHandler) handleController(ks *Session, p *cometd.Packet) {
	res, ok := decodeLoginResponse(p.Data)
	if !ok {
		h.log.Debug().RawJSON("data", nonEmptyJSON(p.Data)).Msg("controller packet")
		return
	}

	if res.Error != "" {
		h.log.Warn().
			Str("error", res.Error).
			Str("description", res.Description).
			Msg("login rejected")
		h.setExitError(&InvalidLoginError{Response: *res})
		if err := ks.Shutdown(); err != nil {
			h.log.Error().Err(err).Msg("shutdown after rejected login failed")
		}
		return
	}

	h.handler.OnLogin(ks)
}

func (h *bayeuxHandler) handlePlayer(ks *Session, p *cometd.Packet) {
	switch msg := DecodeMessage(p.Data).(type) {
	case *GetReady:
		h.handler.OnGetReady(ks, msg)
	case *StartQuestion:
		h.handler.OnStartQuestion(ks, msg)
	case *GameOver:
		h.handler.OnGameOver(ks, msg)
	case *TimeUp:
		h.handler.OnTimeUp(ks, msg)
	case *RevealAnswer:
		h.handler.OnRevealAnswer(ks, msg)
	case *StartQuiz:
		h.handler.OnStartQuiz(ks, msg)
	case *UsernameAccepted:
		h.handler.OnUsernameAccepted(ks, msg)
	case *Unknown:
		h.log.Debug().RawJSON("raw", nonEmptyJSON(msg.Raw)).Msg("unknown player message")
	default:
		// PlayAgain, Feedback, RevealRanking are informational only.
	}
}

// nonEmptyJSON keeps zerolog's RawJSON happy when a packet has no data.
func nonEmptyJSON(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage("null")
	}
	return data
}
