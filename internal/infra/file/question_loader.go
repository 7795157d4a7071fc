// Package file loads question sets from YAML or JSON documents on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
	"solo-trivia/internal/domain"
)

// DefaultSetID names the set read from a document holding a bare list.
const DefaultSetID = "default"

// QuestionLoader reads a document once and serves the sets it holds.
// A document is either a list of questions, registered as DefaultSetID,
// or a mapping of set ID to list. JSON parses as YAML.
type QuestionLoader struct {
	path string

	once sync.Once
	sets map[string][]domain.Question
	err  error
}

func NewQuestionLoader(path string) *QuestionLoader {
	return &QuestionLoader{path: path}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, setID string) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.once.Do(func() {
		data, err := os.ReadFile(l.path)
		if err != nil {
			l.err = fmt.Errorf("read questions: %w", err)
			return
		}
		l.sets, l.err = Parse(data)
	})
	if l.err != nil {
		return nil, l.err
	}
	questions, ok := l.sets[setID]
	if !ok {
		return nil, domain.ErrQuestionSetNotFound
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out, nil
}

// SetIDs lists the sets the document holds.
func (l *QuestionLoader) SetIDs(ctx context.Context) ([]string, error) {
	if _, err := l.LoadQuestions(ctx, ""); err != nil && !errors.Is(err, domain.ErrQuestionSetNotFound) {
		return nil, err
	}
	ids := make([]string, 0, len(l.sets))
	for id := range l.sets {
		ids = append(ids, id)
	}
	return ids, nil
}

// Parse decodes a question document.
func Parse(data []byte) (map[string][]domain.Question, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("parse questions: empty document")
	}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var questions []domain.Question
		if err := root.Decode(&questions); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		return map[string][]domain.Question{DefaultSetID: questions}, nil
	case yaml.MappingNode:
		sets := make(map[string][]domain.Question)
		if err := root.Decode(&sets); err != nil {
			return nil, fmt.Errorf("decode question sets: %w", err)
		}
		return sets, nil
	default:
		return nil, fmt.Errorf("parse questions: expected list or mapping")
	}
}
