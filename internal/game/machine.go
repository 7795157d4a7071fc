package game

import (
	"strings"
	"time"

	"solo-trivia/internal/domain"
)

// Reasons reported with blocked actions.
const (
	ReasonNoQuestions    = "the question set is empty"
	ReasonOutcomeMissing = "record the answer first"
	ReasonGameOver       = "the game is over"
	ReasonAtStart        = "already at the first question"
	ReasonX2Spent        = "X2 has already been used"
	ReasonX2Final        = "X2 is not allowed on the final question"
	ReasonX2Stage        = "X2 can only be armed before the question is shown"
	ReasonNotFinal       = "only the final question takes a wager"
	ReasonWagerStage     = "the wager is placed before the question is shown"
	ReasonFinalResolved  = "the final question is already resolved"
	ReasonFinalByWager   = "the final question is scored by the wager"
	ReasonNotAnswerStage = "reveal the answer first"
)

// Persister receives the state after every successful mutation. Persist
// must return without waiting on storage.
type Persister interface {
	Persist(state domain.GameState, results []domain.ResultRow)
}

// Option configures a Machine.
type Option func(*Machine)

// WithPersister hands every committed state to p.
func WithPersister(p Persister) Option {
	return func(m *Machine) { m.persister = p }
}

// WithReentrantFinal keeps the legacy behavior where entering the final
// question's category stage always clears the resolution, so a resolved
// wager can be scored again after navigating back and forth.
func WithReentrantFinal(reentrant bool) Option {
	return func(m *Machine) { m.reentrantFinal = reentrant }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// Machine drives one solo game through its questions. It owns the
// GameState exclusively and is not safe for concurrent use.
type Machine struct {
	gameID         string
	set            QuestionSet
	state          domain.GameState
	ledger         *Ledger
	persister      Persister
	reentrantFinal bool
	now            func() time.Time
	updatedAt      time.Time
}

// NewMachine starts a fresh game.
func NewMachine(gameID string, set QuestionSet, playerName string, opts ...Option) *Machine {
	return Restore(gameID, set, domain.NewGameState(playerName), nil, opts...)
}

// Restore resumes a game from persisted state. Out-of-range or malformed
// values are clamped to safe defaults. Nothing is persisted until the
// first mutation.
func Restore(gameID string, set QuestionSet, state domain.GameState, results []domain.ResultRow, opts ...Option) *Machine {
	m := &Machine{
		gameID: gameID,
		set:    set,
		state:  normalize(set, state.Clone()),
		now:    time.Now,
	}
	kept := make([]domain.ResultRow, 0, len(results))
	for _, row := range results {
		if row.Index >= 0 && row.Index < set.Len() {
			kept = append(kept, row)
		}
	}
	m.ledger = NewLedger(kept)
	for _, opt := range opts {
		opt(m)
	}
	m.updatedAt = m.now()
	return m
}

func normalize(set QuestionSet, s domain.GameState) domain.GameState {
	s.Index = set.ClampIndex(s.Index)
	if !s.Stage.Valid() {
		s.Stage = domain.StageCategory
	}
	if strings.TrimSpace(s.Player.Name) == "" {
		s.Player.Name = domain.DefaultPlayerName
	}
	if s.Player.Streak < 0 {
		s.Player.Streak = 0
	}
	if s.Player.MaxStreak < s.Player.Streak {
		s.Player.MaxStreak = s.Player.Streak
	}
	if s.X2.ArmedIndex != nil {
		s.X2.Available = false
	}
	s.Wager.Amount = ClampWager(s.Wager.Amount)
	if s.Answered == nil {
		s.Answered = domain.AnsweredMap{}
	}
	if s.LastOutcomeSide != domain.SoloSide {
		s.LastOutcomeSide = ""
	}
	return s
}

// GameID identifies the game.
func (m *Machine) GameID() string {
	return m.gameID
}

// Questions returns the question set being played.
func (m *Machine) Questions() QuestionSet {
	return m.set
}

// State returns a copy of the current aggregate.
func (m *Machine) State() domain.GameState {
	return m.state.Clone()
}

// Results returns the ledger rows ordered by question index.
func (m *Machine) Results() []domain.ResultRow {
	return m.ledger.Rows()
}

func (m *Machine) lastIndex() int {
	return m.set.LastIndex()
}

func (m *Machine) isFinal() bool {
	return m.set.Len() > 0 && m.state.Index == m.lastIndex()
}

// outcomeRecorded is the sole gate for leaving the answer stage.
func (m *Machine) outcomeRecorded() bool {
	if m.isFinal() {
		return m.state.FinalResolution.Resolved
	}
	_, ok := m.state.Answered[m.state.Index]
	return ok
}

// enterCategory is the entry action of the category stage.
func (m *Machine) enterCategory() {
	m.state.Stage = domain.StageCategory
	if !m.reentrantFinal && m.isFinal() {
		if row, ok := m.ledger.rows[m.state.Index]; ok && isFinalTag(m.state.Answered[m.state.Index]) {
			amount := row.Delta
			if amount < 0 {
				amount = -amount
			}
			m.state.Wager = domain.WagerState{Amount: ClampWager(amount)}
			m.state.FinalResolution = domain.FinalResolution{Resolved: true}
			return
		}
	}
	m.state.Wager = domain.WagerState{}
	m.state.FinalResolution = domain.FinalResolution{}
}

func isFinalTag(tag domain.AnswerTag) bool {
	return tag == domain.TagFinalCorrect || tag == domain.TagFinalWrong
}

func (m *Machine) commit() {
	m.updatedAt = m.now()
	if m.persister != nil {
		m.persister.Persist(m.state.Clone(), m.ledger.Rows())
	}
}

var enabled = domain.ActionState{Enabled: true}

func disabled(reason string) domain.ActionState {
	return domain.ActionState{Reason: reason}
}

func blocked(action domain.Action, st domain.ActionState) error {
	return domain.Blocked(action, st.Reason)
}

func (m *Machine) nextState() domain.ActionState {
	if m.set.Len() == 0 {
		return disabled(ReasonNoQuestions)
	}
	switch m.state.Stage {
	case domain.StageAnswer:
		if !m.outcomeRecorded() {
			return disabled(ReasonOutcomeMissing)
		}
	case domain.StageResults:
		return disabled(ReasonGameOver)
	}
	return enabled
}

// Next moves forward one stage. Leaving the answer stage requires a
// recorded outcome.
func (m *Machine) Next() error {
	if st := m.nextState(); !st.Enabled {
		return blocked(domain.ActionNext, st)
	}
	switch m.state.Stage {
	case domain.StageCategory, domain.StageFinale:
		m.state.Stage = domain.StageQuestion
	case domain.StageQuestion:
		m.state.Stage = domain.StageAnswer
	case domain.StageAnswer:
		if m.state.Index < m.lastIndex() {
			m.state.Index++
			m.enterCategory()
		} else {
			m.state.Stage = domain.StageResults
		}
	}
	m.commit()
	return nil
}

func (m *Machine) previousState() domain.ActionState {
	if m.set.Len() == 0 {
		return disabled(ReasonNoQuestions)
	}
	if m.state.Stage == domain.StageCategory && m.state.Index == 0 {
		return disabled(ReasonAtStart)
	}
	return enabled
}

// Previous moves back one stage. From a category stage it re-enters the
// previous question's answer stage.
func (m *Machine) Previous() error {
	if st := m.previousState(); !st.Enabled {
		return blocked(domain.ActionPrevious, st)
	}
	switch m.state.Stage {
	case domain.StageQuestion, domain.StageFinale:
		m.enterCategory()
	case domain.StageAnswer:
		m.state.Stage = domain.StageQuestion
	case domain.StageResults:
		m.state.Stage = domain.StageAnswer
	case domain.StageCategory:
		m.state.Index--
		m.state.Stage = domain.StageAnswer
	}
	m.commit()
	return nil
}

func (m *Machine) armState() domain.ActionState {
	switch {
	case m.set.Len() == 0:
		return disabled(ReasonNoQuestions)
	case !m.state.X2.Available:
		return disabled(ReasonX2Spent)
	case m.isFinal():
		return disabled(ReasonX2Final)
	case m.state.Stage != domain.StageCategory:
		return disabled(ReasonX2Stage)
	}
	return enabled
}

// CanArmX2 reports whether ArmX2 would succeed.
func (m *Machine) CanArmX2() bool {
	return m.set.Len() > 0 && CanArmX2(m.state.X2, m.state.Stage, m.state.Index, m.lastIndex())
}

// X2Active reports whether the token doubles the current question.
func (m *Machine) X2Active() bool {
	return X2Active(m.state.X2, m.state.Index)
}

// ArmX2 spends the one-per-game token on the current question.
func (m *Machine) ArmX2() error {
	if st := m.armState(); !st.Enabled {
		return blocked(domain.ActionArmX2, st)
	}
	x2, ok := ArmX2(m.state.X2, m.state.Stage, m.state.Index, m.lastIndex())
	if !ok {
		return blocked(domain.ActionArmX2, disabled(ReasonX2Spent))
	}
	m.state.X2 = x2
	m.commit()
	return nil
}

func (m *Machine) awardState() domain.ActionState {
	switch {
	case m.set.Len() == 0:
		return disabled(ReasonNoQuestions)
	case m.isFinal():
		return disabled(ReasonFinalByWager)
	case m.state.Stage != domain.StageAnswer:
		return disabled(ReasonNotAnswerStage)
	}
	return enabled
}

// Award records the outcome of a non-final question.
func (m *Machine) Award(outcome domain.Outcome, baseWeight int) error {
	switch outcome {
	case domain.OutcomeCorrect:
		return m.AwardCorrect(baseWeight)
	case domain.OutcomeWrong, domain.OutcomeNone:
		return m.RecordMiss(outcome)
	}
	return domain.ErrUnknownOutcome
}

// AwardCorrect scores a correct answer: category points, doubled while X2
// is active, plus the flat streak bonus.
func (m *Machine) AwardCorrect(baseWeight int) error {
	if st := m.awardState(); !st.Enabled {
		return blocked(domain.ActionAward, st)
	}
	q, _ := m.set.At(m.state.Index)
	x2 := m.X2Active()
	player, award := ScoreCorrect(m.state.Player, m.state.LastOutcomeSide == domain.SoloSide, q.Points, baseWeight, x2)

	m.state.Player = player
	m.state.LastOutcomeSide = domain.SoloSide
	m.state.Answered[m.state.Index] = domain.TagCorrect
	m.ledger.Record(domain.ResultRow{
		Index:             m.state.Index,
		Category:          q.Category,
		Points:            q.Points,
		Correct:           boolPtr(true),
		X2Applied:         x2,
		Delta:             award.Delta(),
		RunningTotal:      player.Score,
		StreakBonusPoints: award.StreakBonus,
	})
	m.commit()
	return nil
}

// RecordMiss records a wrong answer or an explicit no-answer. The streak
// resets; the score does not change.
func (m *Machine) RecordMiss(outcome domain.Outcome) error {
	if outcome != domain.OutcomeWrong && outcome != domain.OutcomeNone {
		return domain.ErrUnknownOutcome
	}
	if st := m.awardState(); !st.Enabled {
		return blocked(domain.ActionAward, st)
	}
	q, _ := m.set.At(m.state.Index)

	m.state.Player = ScoreMiss(m.state.Player)
	m.state.LastOutcomeSide = ""
	m.state.Answered[m.state.Index] = domain.TagWrong
	var correct *bool
	if outcome == domain.OutcomeWrong {
		correct = boolPtr(false)
	}
	m.ledger.Record(domain.ResultRow{
		Index:        m.state.Index,
		Category:     q.Category,
		Points:       q.Points,
		Correct:      correct,
		X2Applied:    m.X2Active(),
		RunningTotal: m.state.Player.Score,
	})
	m.commit()
	return nil
}

func (m *Machine) wagerState() domain.ActionState {
	switch {
	case m.set.Len() == 0:
		return disabled(ReasonNoQuestions)
	case !m.isFinal():
		return disabled(ReasonNotFinal)
	case m.state.Stage != domain.StageCategory:
		return disabled(ReasonWagerStage)
	case m.state.FinalResolution.Resolved:
		return disabled(ReasonFinalResolved)
	}
	return enabled
}

// SetWager stakes amount, clamped into [MinWager, MaxWager], on the final
// question. It does nothing once the final is resolved.
func (m *Machine) SetWager(amount int) error {
	if m.isFinal() && m.state.FinalResolution.Resolved {
		return nil
	}
	if st := m.wagerState(); !st.Enabled {
		return blocked(domain.ActionSetWager, st)
	}
	m.state.Wager = domain.WagerState{Amount: ClampWager(amount)}
	m.commit()
	return nil
}

func (m *Machine) resolveState() domain.ActionState {
	switch {
	case m.set.Len() == 0:
		return disabled(ReasonNoQuestions)
	case !m.isFinal():
		return disabled(ReasonNotFinal)
	case m.state.Stage != domain.StageAnswer:
		return disabled(ReasonNotAnswerStage)
	case m.state.FinalResolution.Resolved:
		return disabled(ReasonFinalResolved)
	}
	return enabled
}

// ResolveFinal wins or loses the wager. Resolving twice is a no-op.
func (m *Machine) ResolveFinal(outcome domain.Outcome) error {
	if m.isFinal() && m.state.Stage == domain.StageAnswer && m.state.FinalResolution.Resolved {
		return nil
	}
	if st := m.resolveState(); !st.Enabled {
		return blocked(domain.ActionResolveFinal, st)
	}
	player, delta, err := ResolveWager(m.state.Player, m.state.Wager, outcome)
	if err != nil {
		return err
	}
	q, _ := m.set.At(m.state.Index)
	tag := domain.TagFinalWrong
	if outcome == domain.OutcomeCorrect {
		tag = domain.TagFinalCorrect
	}

	m.state.Player = player
	m.state.FinalResolution = domain.FinalResolution{Resolved: true}
	m.state.Answered[m.state.Index] = tag
	m.ledger.Record(domain.ResultRow{
		Index:        m.state.Index,
		Category:     q.Category,
		Points:       q.Points,
		IsFinal:      true,
		Correct:      boolPtr(outcome == domain.OutcomeCorrect),
		Delta:        delta,
		RunningTotal: player.Score,
	})
	m.commit()
	return nil
}

// Reset starts the game over, keeping the player's name.
func (m *Machine) Reset() {
	m.state = domain.NewGameState(m.state.Player.Name)
	m.ledger.Clear()
	m.commit()
}

// Rename sets the player's display name. A blank name restores the default.
func (m *Machine) Rename(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultPlayerName
	}
	if name == m.state.Player.Name {
		return
	}
	m.state.Player.Name = name
	m.commit()
}

// Actions lists what the renderer may request in the current stage.
func (m *Machine) Actions() domain.Actions {
	return domain.Actions{
		Next:         m.nextState(),
		Previous:     m.previousState(),
		ArmX2:        m.armState(),
		SetWager:     m.wagerState(),
		Award:        m.awardState(),
		ResolveFinal: m.resolveState(),
	}
}

// Snapshot is the read-only view handed to renderers. The prompt is hidden
// until the question stage and the answer until the answer stage.
func (m *Machine) Snapshot() domain.Snapshot {
	state := m.state.Clone()
	snap := domain.Snapshot{
		GameID:        m.gameID,
		Index:         state.Index,
		Total:         m.set.Len(),
		Stage:         state.Stage,
		IsFinal:       m.isFinal(),
		Player:        state.Player,
		X2:            domain.X2View{Available: state.X2.Available, Active: m.X2Active(), ArmedIndex: state.X2.ArmedIndex},
		Wager:         state.Wager.Amount,
		FinalResolved: state.FinalResolution.Resolved,
		Answered:      state.Answered,
		Results:       m.ledger.Rows(),
		Actions:       m.Actions(),
		UpdatedAt:     m.updatedAt,
	}
	if q, ok := m.set.At(state.Index); ok {
		switch state.Stage {
		case domain.StageCategory, domain.StageFinale:
			q.Prompt, q.Media, q.Answer, q.Fact = "", nil, "", ""
		case domain.StageQuestion:
			q.Answer, q.Fact = "", ""
		}
		snap.Question = &q
	}
	return snap
}
