package kahoot

import (
	"encoding/json"
	"fmt"

	"github.com/streamspace-dev/quizswarm/internal/cometd"
	"github.com/streamspace-dev/quizswarm/internal/kahoot/challenge"
)

const (
	controllerChannel = "/service/controller"
	playerChannel     = "/service/player"
	statusChannel     = "/service/status"
)

// answerMessageID is the controller message id for an answer submission.
const answerMessageID = 45

// Session is the handle passed to every game callback. It wraps the
// Bayeux session with the game identity and is cheap to copy around.
type Session struct {
	bayeux *cometd.Session
	code   string
	name   string
}

// Bayeux exposes the underlying protocol session.
func (s *Session) Bayeux() *cometd.Session {
	return s.bayeux
}

// Code returns the game pin this session joined.
func (s *Session) Code() string {
	return s.code
}

// Username returns the player name this session logged in with.
func (s *Session) Username() string {
	return s.name
}

// Login registers the player with the game host and subscribes to the
// controller, player and status service channels, in that order.
func (s *Session) Login(name string) error {
	if name == "" {
		return ErrMissingName
	}

	packet, err := loginPacket(s.bayeux.ClientID(), s.code, name)
	if err != nil {
		return err
	}
	if err := s.bayeux.SendPacket(packet); err != nil {
		return err
	}

	for _, ch := range []string{controllerChannel, playerChannel, statusChannel} {
		if err := s.bayeux.Subscribe(ch); err != nil {
			return err
		}
	}
	return nil
}

// SubmitAnswer submits a choice for the currently open question.
func (s *Session) SubmitAnswer(choice int) error {
	packet, err := answerPacket(s.bayeux.ClientID(), s.code, choice)
	if err != nil {
		return err
	}
	return s.bayeux.SendPacket(packet)
}

// Shutdown closes the underlying session.
func (s *Session) Shutdown() error {
	return s.bayeux.Shutdown()
}

// deviceInfo mirrors what the web player reports about its browser.
type deviceInfo struct {
	Device struct {
		UserAgent string `json:"userAgent"`
		Screen    struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"screen"`
	} `json:"device"`
}

func newDeviceInfo() deviceInfo {
	var d deviceInfo
	d.Device.UserAgent = challenge.UserAgent
	d.Device.Screen.Width = 1920
	d.Device.Screen.Height = 1080
	return d
}

// loginPacket builds the /service/controller login request. The content
// field is a string containing JSON, not a nested object.
func loginPacket(clientID, code, name string) (*cometd.Packet, error) {
	if clientID == "" {
		return nil, cometd.ErrMissingClientID
	}

	content, err := json.Marshal(newDeviceInfo())
	if err != nil {
		return nil, fmt.Errorf("marshal device info: %w", err)
	}

	data, err := json.Marshal(map[string]any{
		"type":    "login",
		"gameid":  code,
		"host":    "kahoot.it",
		"name":    name,
		"content": string(content),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal login data: %w", err)
	}

	return &cometd.Packet{
		Channel:  cometd.ParseChannel(controllerChannel),
		ClientID: clientID,
		Data:     data,
	}, nil
}

// answerPacket builds the /service/controller answer submission. As with
// login, content is double-encoded.
func answerPacket(clientID, code string, choice int) (*cometd.Packet, error) {
	if clientID == "" {
		return nil, cometd.ErrMissingClientID
	}

	content, err := json.Marshal(map[string]any{
		"choice": choice,
		"meta": map[string]any{
			"lag":    0,
			"device": newDeviceInfo(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal answer content: %w", err)
	}

	data, err := json.Marshal(map[string]any{
		"type":    "message",
		"id":      answerMessageID,
		"gameid":  code,
		"host":    "kahoot.it",
		"content": string(content),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal answer data: %w", err)
	}

	return &cometd.Packet{
		Channel:  cometd.ParseChannel(controllerChannel),
		ClientID: clientID,
		Data:     data,
	}, nil
}
