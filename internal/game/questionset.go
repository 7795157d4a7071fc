package game

import (
	"sort"

	"solo-trivia/internal/domain"
)

// QuestionSet is an immutable list of questions ordered by Question.Order.
type QuestionSet struct {
	questions []domain.Question
}

// NewQuestionSet copies and stable-sorts questions by order. Points that
// are not positive default to 1.
func NewQuestionSet(questions []domain.Question) QuestionSet {
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	for i := range out {
		if out[i].Points < 1 {
			out[i].Points = 1
		}
		if out[i].Media != nil {
			media := *out[i].Media
			out[i].Media = &media
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return QuestionSet{questions: out}
}

// Len returns the number of questions.
func (s QuestionSet) Len() int {
	return len(s.questions)
}

// LastIndex is Len()-1, or -1 for an empty set.
func (s QuestionSet) LastIndex() int {
	return len(s.questions) - 1
}

// At returns the question at index i.
func (s QuestionSet) At(i int) (domain.Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[i], true
}

// All returns a copy of the ordered questions.
func (s QuestionSet) All() []domain.Question {
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// ClampIndex maps an arbitrary index into [0, LastIndex], or 0 when the set
// is empty.
func (s QuestionSet) ClampIndex(i int) int {
	last := s.LastIndex()
	if last < 0 || i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
