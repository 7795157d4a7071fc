package domain

import "time"

// SoloSide tags outcomes scored by the single player of a solo round.
const SoloSide = "p1"

// DefaultPlayerName is used when no name has been set.
const DefaultPlayerName = "Player"

// MediaKind names the kind of media attached to a question.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Media describes an optional attachment. Playability is not validated.
type Media struct {
	Kind   MediaKind `json:"kind" yaml:"kind"`
	Src    string    `json:"src" yaml:"src"`
	Alt    string    `json:"alt,omitempty" yaml:"alt,omitempty"`
	Poster string    `json:"poster,omitempty" yaml:"poster,omitempty"`
	Type   string    `json:"type,omitempty" yaml:"type,omitempty"`
}

// Question is a single trivia question.
type Question struct {
	Order    int    `json:"order" yaml:"order"`
	Category string `json:"category" yaml:"category"`
	Points   int    `json:"points" yaml:"points"` // defaults to 1 if not positive
	Prompt   string `json:"prompt" yaml:"prompt"`
	Answer   string `json:"answer,omitempty" yaml:"answer"`
	Fact     string `json:"fact,omitempty" yaml:"fact,omitempty"`
	Media    *Media `json:"media,omitempty" yaml:"media,omitempty"`
}

// Stage is a step in the lifecycle of a question.
type Stage string

const (
	StageCategory Stage = "category"
	StageQuestion Stage = "question"
	StageAnswer   Stage = "answer"
	// StageFinale is reserved; the final question's betting flow runs
	// through the category and answer stages.
	StageFinale  Stage = "finale"
	StageResults Stage = "results"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageCategory, StageQuestion, StageAnswer, StageFinale, StageResults:
		return true
	}
	return false
}

// Outcome is what the host marked for the current question.
type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	// OutcomeNone marks an explicit no-answer. It resets the streak like a
	// wrong answer but is reported as a draw in the results.
	OutcomeNone Outcome = "none"
)

// AnswerTag is the recorded outcome of a question in the answered map.
type AnswerTag string

const (
	TagCorrect      AnswerTag = "correct"
	TagWrong        AnswerTag = "wrong"
	TagFinalCorrect AnswerTag = "final-correct"
	TagFinalWrong   AnswerTag = "final-wrong"
)

// PlayerState tracks score and streak for one player.
type PlayerState struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Streak    int    `json:"streak"`
	MaxStreak int    `json:"maxStreak"`
}

// X2State tracks the one-time double points token.
type X2State struct {
	Available  bool `json:"available"`
	ArmedIndex *int `json:"armedIndex"`
}

// WagerState holds the stake for the final question.
type WagerState struct {
	Amount int `json:"amount"`
}

// FinalResolution guards against scoring the final wager twice.
type FinalResolution struct {
	Resolved bool `json:"resolved"`
}

// AnsweredMap maps question index to its recorded outcome.
type AnsweredMap map[int]AnswerTag

// GameState is the aggregate owned by the stage machine.
type GameState struct {
	Index           int             `json:"index"`
	Stage           Stage           `json:"stage"`
	Player          PlayerState     `json:"player"`
	X2              X2State         `json:"x2"`
	Wager           WagerState      `json:"wager"`
	FinalResolution FinalResolution `json:"finalResolution"`
	Answered        AnsweredMap     `json:"answered"`
	LastOutcomeSide string          `json:"lastOutcomeSide,omitempty"`
}

// NewGameState returns the state of a fresh game.
func NewGameState(name string) GameState {
	if name == "" {
		name = DefaultPlayerName
	}
	return GameState{
		Index:    0,
		Stage:    StageCategory,
		Player:   PlayerState{Name: name},
		X2:       X2State{Available: true},
		Answered: AnsweredMap{},
	}
}

// Clone returns a deep copy.
func (g GameState) Clone() GameState {
	out := g
	if g.X2.ArmedIndex != nil {
		idx := *g.X2.ArmedIndex
		out.X2.ArmedIndex = &idx
	}
	out.Answered = make(AnsweredMap, len(g.Answered))
	for k, v := range g.Answered {
		out.Answered[k] = v
	}
	return out
}

// ResultRow is one line of the results table. Correct is nil for a
// no-answer.
type ResultRow struct {
	Index             int    `json:"index"`
	Category          string `json:"category"`
	Points            int    `json:"points"`
	IsFinal           bool   `json:"isFinal"`
	Correct           *bool  `json:"correct"`
	X2Applied         bool   `json:"x2Applied"`
	Delta             int    `json:"delta"`
	RunningTotal      int    `json:"runningTotal"`
	StreakBonusPoints int    `json:"streakBonusPoints"`
}

// Action names an operation the renderer can request.
type Action string

const (
	ActionNext         Action = "next"
	ActionPrevious     Action = "previous"
	ActionArmX2        Action = "armX2"
	ActionSetWager     Action = "setWager"
	ActionAward        Action = "award"
	ActionResolveFinal Action = "resolveFinal"
	ActionReset        Action = "reset"
	ActionRename       Action = "rename"
)

// ActionState says whether an action is currently legal and why not.
type ActionState struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

// Actions lists the legal actions for the current stage.
type Actions struct {
	Next         ActionState `json:"next"`
	Previous     ActionState `json:"previous"`
	ArmX2        ActionState `json:"armX2"`
	SetWager     ActionState `json:"setWager"`
	Award        ActionState `json:"award"`
	ResolveFinal ActionState `json:"resolveFinal"`
}

// X2View is the renderer's view of the token.
type X2View struct {
	Available  bool `json:"available"`
	Active     bool `json:"active"`
	ArmedIndex *int `json:"armedIndex"`
}

// Snapshot is the read-only state handed to renderers.
type Snapshot struct {
	GameID        string      `json:"gameId"`
	Index         int         `json:"index"`
	Total         int         `json:"total"`
	Stage         Stage       `json:"stage"`
	IsFinal       bool        `json:"isFinal"`
	Question      *Question   `json:"question,omitempty"`
	Player        PlayerState `json:"player"`
	X2            X2View      `json:"x2"`
	Wager         int         `json:"wager"`
	FinalResolved bool        `json:"finalResolved"`
	Answered      AnsweredMap `json:"answered"`
	Results       []ResultRow `json:"results"`
	Actions       Actions     `json:"actions"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
