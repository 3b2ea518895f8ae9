package kahoot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/quizswarm/internal/cometd"
)

// recordingGameHandler records which typed callbacks fired.
type recordingGameHandler struct {
	NopHandler

	logins         int
	getReady       []*GetReady
	startQuestions []*StartQuestion
	gameOvers      []*GameOver
	errs           []error
}

func (h *recordingGameHandler) OnLogin(*Session)                               { h.logins++ }
func (h *recordingGameHandler) OnGetReady(_ *Session, msg *GetReady)           { h.getReady = append(h.getReady, msg) }
func (h *recordingGameHandler) OnStartQuestion(_ *Session, msg *StartQuestion) { h.startQuestions = append(h.startQuestions, msg) }
func (h *recordingGameHandler) OnGameOver(_ *Session, msg *GameOver)           { h.gameOvers = append(h.gameOvers, msg) }
func (h *recordingGameHandler) OnError(_ *Session, err error)                  { h.errs = append(h.errs, err) }

func playerPacket(data string) *cometd.Packet {
	return &cometd.Packet{
		Channel: cometd.ParseChannel("/service/player"),
		Data:    json.RawMessage(data),
	}
}

func TestHandlerRoutesPlayerMessages(t *testing.T) {
	rec := &recordingGameHandler{}
	bh := newBayeuxHandler("123456", "bot0", rec)

	bh.OnMessage(nil, playerPacket(`{"type":"message","id":1,"content":"{\"questionIndex\":0,\"gameBlockType\":\"quiz\",\"quizQuestionAnswers\":[4],\"timeLeft\":5}"}`))
	bh.OnMessage(nil, playerPacket(`{"type":"message","id":2,"content":"{\"questionIndex\":0,\"gameBlockType\":\"quiz\",\"quizQuestionAnswers\":[4]}"}`))
	bh.OnMessage(nil, playerPacket(`{"type":"message","id":9999,"content":"{}"}`))

	require.Len(t, rec.getReady, 1)
	assert.Equal(t, []int{4}, rec.getReady[0].QuizQuestionAnswers)
	require.Len(t, rec.startQuestions, 1)
	assert.Empty(t, rec.gameOvers)
	assert.Zero(t, rec.logins)
}

func TestHandlerRoutesControllerLogin(t *testing.T) {
	rec := &recordingGameHandler{}
	bh := newBayeuxHandler("123456", "bot0", rec)

	// A successful login response reaches OnLogin.
	bh.OnMessage(nil, &cometd.Packet{
		Channel: cometd.ParseChannel("/service/controller"),
		Data:    json.RawMessage(`{"type":"loginResponse","cid":"7"}`),
	})
	assert.Equal(t, 1, rec.logins)

	// Controller chatter that is not a login response is ignored.
	bh.OnMessage(nil, &cometd.Packet{
		Channel: cometd.ParseChannel("/service/controller"),
		Data:    json.RawMessage(`{"type":"something"}`),
	})
	assert.Equal(t, 1, rec.logins)
	assert.Nil(t, bh.takeExitError())
}

func TestHandlerIgnoresStatusAndUnknownChannels(t *testing.T) {
	rec := &recordingGameHandler{}
	bh := newBayeuxHandler("123456", "bot0", rec)

	bh.OnMessage(nil, &cometd.Packet{Channel: cometd.ParseChannel("/service/status")})
	bh.OnMessage(nil, &cometd.Packet{Channel: cometd.ParseChannel("/somewhere/else")})

	assert.Zero(t, rec.logins)
	assert.Empty(t, rec.errs)
}

func TestExitErrorIsTakenOnce(t *testing.T) {
	bh := newBayeuxHandler("123456", "bot0", &recordingGameHandler{})

	want := &InvalidLoginError{Response: LoginResponse{Error: "USER_INPUT"}}
	bh.setExitError(want)

	assert.Equal(t, want, bh.takeExitError())
	assert.Nil(t, bh.takeExitError())
}

func TestSessionAccessors(t *testing.T) {
	bh := newBayeuxHandler("123456", "bot0", &recordingGameHandler{})
	ks := bh.session(nil)

	assert.Equal(t, "123456", ks.Code())
	assert.Equal(t, "bot0", ks.Username())
}
