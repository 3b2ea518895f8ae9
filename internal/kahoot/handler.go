package kahoot

// Handler receives game callbacks. Every callback runs on its own
// goroutine and may call back into the Session (submit an answer, shut
// down). Embed NopHandler to implement only the callbacks you need.
type Handler interface {
	// OnLogin fires after the game host accepted the login.
	OnLogin(s *Session)

	// OnGetReady fires when a question is about to open.
	OnGetReady(s *Session, msg *GetReady)

	// OnStartQuestion fires when a question opens for answers.
	OnStartQuestion(s *Session, msg *StartQuestion)

	// OnGameOver fires with the player's final results.
	OnGameOver(s *Session, msg *GameOver)

	// OnTimeUp fires when a question closes without our answer.
	OnTimeUp(s *Session, msg *TimeUp)

	// OnRevealAnswer fires with per-question scoring.
	OnRevealAnswer(s *Session, msg *RevealAnswer)

	// OnStartQuiz fires when the quiz itself starts.
	OnStartQuiz(s *Session, msg *StartQuiz)

	// OnUsernameAccepted fires when the host confirms the player name.
	OnUsernameAccepted(s *Session, msg *UsernameAccepted)

	// OnError receives recoverable session and game errors.
	OnError(s *Session, err error)
}

// NopHandler implements Handler with no-ops.
type NopHandler struct{}

func (NopHandler) OnLogin(*Session)                               {}
func (NopHandler) OnGetReady(*Session, *GetReady)                 {}
func (NopHandler) OnStartQuestion(*Session, *StartQuestion)       {}
func (NopHandler) OnGameOver(*Session, *GameOver)                 {}
func (NopHandler) OnTimeUp(*Session, *TimeUp)                     {}
func (NopHandler) OnRevealAnswer(*Session, *RevealAnswer)         {}
func (NopHandler) OnStartQuiz(*Session, *StartQuiz)               {}
func (NopHandler) OnUsernameAccepted(*Session, *UsernameAccepted) {}
func (NopHandler) OnError(*Session, error)                        {}
