package swarm

import (
	"math/rand/v2"
	"time"

	"github.com/streamspace-dev/quizswarm/internal/kahoot"
	"github.com/streamspace-dev/quizswarm/internal/logger"
)

// answerDelayBase is the minimum wait before submitting an answer. The
// host flags answers that arrive faster than a human could tap.
const answerDelayBase = 250 * time.Millisecond

// botHandler plays one seat: it reports logins to the controller and
// answers every question with a random valid choice.
type botHandler struct {
	kahoot.NopHandler

	id     uint64
	events chan<- workerEvent
}

func (b *botHandler) OnLogin(s *kahoot.Session) {
	select {
	case b.events <- workerEvent{id: b.id, kind: eventLogin, name: s.Username()}:
	default:
	}
}

func (b *botHandler) OnStartQuestion(s *kahoot.Session, msg *kahoot.StartQuestion) {
	if msg.QuestionIndex < 0 || msg.QuestionIndex >= len(msg.QuizQuestionAnswers) {
		logger.Swarm().Warn().
			Uint64("worker", b.id).
			Int("question", msg.QuestionIndex).
			Msg("question index out of range, skipping answer")
		return
	}
	answers := msg.QuizQuestionAnswers[msg.QuestionIndex]
	if answers <= 0 {
		return
	}

	// Stagger submissions across the fleet so they do not land as one
	// burst.
	delay := answerDelayBase + time.Duration(b.id)*10*time.Millisecond
	time.Sleep(delay)

	choice := rand.IntN(answers)
	if err := s.SubmitAnswer(choice); err != nil {
		b.OnError(s, err)
	}
}

func (b *botHandler) OnError(s *kahoot.Session, err error) {
	logger.Swarm().Warn().Err(err).Uint64("worker", b.id).Msg("worker error")
}
