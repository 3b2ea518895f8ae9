package kahoot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/quizswarm/internal/cometd"
	"github.com/streamspace-dev/quizswarm/internal/kahoot/challenge"
)

func TestLoginPacketShape(t *testing.T) {
	p, err := loginPacket("client-1", "123456", "bot0")
	require.NoError(t, err)

	assert.Equal(t, cometd.ParseChannel("/service/controller"), p.Channel)
	assert.Equal(t, "client-1", p.ClientID)

	var data struct {
		Type    string `json:"type"`
		GameID  string `json:"gameid"`
		Host    string `json:"host"`
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(p.Data, &data))

	assert.Equal(t, "login", data.Type)
	assert.Equal(t, "123456", data.GameID)
	assert.Equal(t, "kahoot.it", data.Host)
	assert.Equal(t, "bot0", data.Name)

	// content is a string holding JSON, not a nested object.
	var device deviceInfo
	require.NoError(t, json.Unmarshal([]byte(data.Content), &device))
	assert.Equal(t, challenge.UserAgent, device.Device.UserAgent)
	assert.Equal(t, 1920, device.Device.Screen.Width)
	assert.Equal(t, 1080, device.Device.Screen.Height)
}

func TestLoginPacketRequiresClientID(t *testing.T) {
	_, err := loginPacket("", "123456", "bot0")
	assert.ErrorIs(t, err, cometd.ErrMissingClientID)
}

func TestAnswerPacketShape(t *testing.T) {
	p, err := answerPacket("client-1", "123456", 2)
	require.NoError(t, err)

	assert.Equal(t, cometd.ParseChannel("/service/controller"), p.Channel)
	assert.Equal(t, "client-1", p.ClientID)

	var data struct {
		Type    string `json:"type"`
		ID      int    `json:"id"`
		GameID  string `json:"gameid"`
		Host    string `json:"host"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(p.Data, &data))

	assert.Equal(t, "message", data.Type)
	assert.Equal(t, 45, data.ID)
	assert.Equal(t, "123456", data.GameID)
	assert.Equal(t, "kahoot.it", data.Host)

	var content struct {
		Choice int `json:"choice"`
		Meta   struct {
			Lag    int        `json:"lag"`
			Device deviceInfo `json:"device"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(data.Content), &content))

	assert.Equal(t, 2, content.Choice)
	assert.Equal(t, 0, content.Meta.Lag)
	assert.Equal(t, challenge.UserAgent, content.Meta.Device.Device.UserAgent)
}

func TestAnswerPacketRequiresClientID(t *testing.T) {
	_, err := answerPacket("", "123456", 0)
	assert.ErrorIs(t, err, cometd.ErrMissingClientID)
}

func TestDecodeLoginResponse(t *testing.T) {
	res, ok := decodeLoginResponse(json.RawMessage(`{"type":"loginResponse","cid":"33"}`))
	require.True(t, ok)
	assert.Empty(t, res.Error)
	assert.Equal(t, "33", res.CID)

	res, ok = decodeLoginResponse(json.RawMessage(`{"type":"loginResponse","error":"USER_INPUT","description":"Duplicate name"}`))
	require.True(t, ok)
	assert.Equal(t, "USER_INPUT", res.Error)
	assert.Equal(t, "Duplicate name", res.Description)
}

func TestDecodeLoginResponseIgnoresOtherData(t *testing.T) {
	_, ok := decodeLoginResponse(json.RawMessage(`{"type":"message","id":1}`))
	assert.False(t, ok)

	_, ok = decodeLoginResponse(json.RawMessage(`null`))
	assert.False(t, ok)

	_, ok = decodeLoginResponse(nil)
	assert.False(t, ok)
}

func TestInvalidLoginErrorMessage(t *testing.T) {
	err := &InvalidLoginError{Response: LoginResponse{
		Error:       "USER_INPUT",
		Description: "Duplicate name",
	}}
	assert.Contains(t, err.Error(), "Duplicate name")

	err = &InvalidLoginError{Response: LoginResponse{Error: "USER_INPUT"}}
	assert.Contains(t, err.Error(), "USER_INPUT")
}
