package kahoot

import (
	"encoding/json"

	"github.com/streamspace-dev/quizswarm/internal/jsonutil"
)

// Player-channel message ids. The envelope's numeric id selects the
// payload shape carried in its stringified content field.
const (
	messageIDGetReady         = 1
	messageIDStartQuestion    = 2
	messageIDGameOver         = 3
	messageIDTimeUp           = 4
	messageIDPlayAgain        = 5
	messageIDRevealAnswer     = 8
	messageIDStartQuiz        = 9
	messageIDFeedback         = 12
	messageIDRevealRanking    = 13
	messageIDUsernameAccepted = 14
)

// Message is one decoded player-channel payload. Concrete types are
// GetReady, StartQuestion, GameOver, TimeUp, PlayAgain, RevealAnswer,
// StartQuiz, Feedback, RevealRanking, UsernameAccepted and Unknown.
type Message interface {
	message()
}

// GetReady announces an upcoming question.
type GetReady struct {
	QuestionIndex       int    `json:"questionIndex"`
	GameBlockType       string `json:"gameBlockType"`
	GameBlockLayout     string `json:"gameBlockLayout,omitempty"`
	QuizQuestionAnswers []int  `json:"quizQuestionAnswers"`
	TimeLeft            int    `json:"timeLeft"`

	Extra map[string]json.RawMessage `json:"-"`
}

// StartQuestion opens a question for answers.
type StartQuestion struct {
	QuestionIndex       int    `json:"questionIndex"`
	GameBlockType       string `json:"gameBlockType"`
	QuizQuestionAnswers []int  `json:"quizQuestionAnswers"`

	Extra map[string]json.RawMessage `json:"-"`
}

// GameOver carries the player's final results. CID comes from the message
// envelope.
type GameOver struct {
	Rank                          uint64 `json:"rank"`
	CorrectCount                  uint64 `json:"correctCount"`
	IncorrectCount                uint64 `json:"incorrectCount"`
	UnansweredCount               uint64 `json:"unansweredCount"`
	PlayerCount                   uint64 `json:"playerCount"`
	StartTime                     uint64 `json:"startTime"`
	QuizID                        string `json:"quizId"`
	Name                          string `json:"name"`
	TotalScore                    uint64 `json:"totalScore"`
	HostID                        string `json:"hostId"`
	IsKicked                      bool   `json:"isKicked"`
	IsGhost                       bool   `json:"isGhost"`
	IsOnlyNonPointGameBlockKahoot bool   `json:"isOnlyNonPointGameBlockKahoot"`

	CID string `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

// TimeUp reports that a question closed without an answer from us.
type TimeUp struct {
	QuestionNumber uint64 `json:"questionNumber"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PlayAgain signals that the host restarted the quiz.
type PlayAgain struct {
	Extra map[string]json.RawMessage `json:"-"`
}

// RevealAnswer carries the per-question scoring after a question closes.
type RevealAnswer struct {
	QuizType       string           `json:"type"`
	Choice         int              `json:"choice"`
	IsCorrect      bool             `json:"isCorrect"`
	Text           string           `json:"text"`
	ReceivedTime   uint64           `json:"receivedTime"`
	PointsQuestion bool             `json:"pointsQuestion"`
	Points         uint64           `json:"points"`
	CorrectAnswers []string         `json:"correctAnswers"`
	TotalScore     uint64           `json:"totalScore"`
	PointsData     RevealPointsData `json:"pointsData"`
	Rank           uint64           `json:"rank"`

	Extra map[string]json.RawMessage `json:"-"`
}

// RevealPointsData is the points breakdown inside RevealAnswer.
type RevealPointsData struct {
	AnswerStreakPoints        json.RawMessage `json:"answerStreakPoints,omitempty"`
	QuestionPoints            uint64          `json:"questionPoints"`
	TotalPointsWithBonuses    uint64          `json:"totalPointsWithBonuses"`
	TotalPointsWithoutBonuses uint64          `json:"totalPointsWithoutBonuses"`
}

// StartQuiz announces the quiz itself.
type StartQuiz struct {
	QuizName            string `json:"quizName"`
	QuizType            string `json:"quizType"`
	QuizQuestionAnswers []int  `json:"quizQuestionAnswers"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Feedback asks the player for a post-game rating.
type Feedback struct {
	QuizType string `json:"quizType"`

	Extra map[string]json.RawMessage `json:"-"`
}

// RevealRanking shows the podium. CID comes from the message envelope.
type RevealRanking struct {
	PodiumMedalType string `json:"podiumMedalType"`

	CID string `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UsernameAccepted confirms the login name. CID comes from the message
// envelope.
type UsernameAccepted struct {
	PlayerName       string `json:"playerName"`
	QuizType         string `json:"quizType"`
	PlayerV2         bool   `json:"playerV2"`
	HostPrimaryUsage string `json:"hostPrimaryUsage"`

	CID string `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Unknown preserves any envelope this client does not model. Decoding
// never fails; unrecognized ids and malformed payloads all land here.
type Unknown struct {
	Raw json.RawMessage
}

func (*GetReady) message()         {}
func (*StartQuestion) message()    {}
func (*GameOver) message()         {}
func (*TimeUp) message()           {}
func (*PlayAgain) message()        {}
func (*RevealAnswer) message()     {}
func (*StartQuiz) message()        {}
func (*Feedback) message()         {}
func (*RevealRanking) message()    {}
func (*UsernameAccepted) message() {}
func (*Unknown) message()          {}

// envelope is the raw player-channel wrapper. Content is a string holding
// JSON, not nested JSON.
type envelope struct {
	Type    string  `json:"type"`
	ID      *uint64 `json:"id"`
	CID     string  `json:"cid"`
	Content *string `json:"content"`
}

// DecodeMessage turns a raw player-channel payload into a typed Message.
// Anything that does not fit the known taxonomy decays to Unknown carrying
// the original JSON.
func DecodeMessage(data json.RawMessage) Message {
	unknown := &Unknown{Raw: data}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return unknown
	}
	if env.Type != "message" || env.ID == nil || env.Content == nil {
		return unknown
	}
	content := []byte(*env.Content)

	switch *env.ID {
	case messageIDGetReady:
		var msg GetReady
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDStartQuestion:
		var msg StartQuestion
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDGameOver:
		if env.CID == "" {
			return unknown
		}
		var msg GameOver
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		msg.CID = env.CID
		return &msg

	case messageIDTimeUp:
		var msg TimeUp
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDPlayAgain:
		var msg PlayAgain
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDRevealAnswer:
		var msg RevealAnswer
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDStartQuiz:
		var msg StartQuiz
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDFeedback:
		var msg Feedback
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		return &msg

	case messageIDRevealRanking:
		if env.CID == "" {
			return unknown
		}
		var msg RevealRanking
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		msg.CID = env.CID
		return &msg

	case messageIDUsernameAccepted:
		if env.CID == "" {
			return unknown
		}
		var msg UsernameAccepted
		extra, err := jsonutil.UnmarshalExtra(content, &msg)
		if err != nil {
			return unknown
		}
		msg.Extra = extra
		msg.CID = env.CID
		return &msg

	default:
		return unknown
	}
}
