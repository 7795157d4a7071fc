package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"solo-trivia/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadBareListAsDefaultSet(t *testing.T) {
	path := writeFile(t, "q.yaml", `
- order: 2
  category: Space
  points: 2
  prompt: Closest star?
  answer: The Sun
- order: 1
  category: History
  prompt: First emperor of Rome?
  answer: Augustus
  media:
    kind: image
    src: /img/augustus.jpg
    alt: Bust
`)
	loader := NewQuestionLoader(path)
	questions, err := loader.LoadQuestions(context.Background(), DefaultSetID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Category != "Space" || questions[0].Points != 2 {
		t.Fatalf("unexpected first question %+v", questions[0])
	}
	if questions[1].Media == nil || questions[1].Media.Kind != domain.MediaImage {
		t.Fatalf("expected image media, got %+v", questions[1].Media)
	}
}

func TestLoadMappingOfSets(t *testing.T) {
	path := writeFile(t, "q.json", `{
  "geo": [{"order": 1, "category": "Geo", "prompt": "Capital of France?", "answer": "Paris"}],
  "music": [{"order": 1, "category": "Music", "prompt": "Who wrote Bolero?", "answer": "Ravel"}]
}`)
	loader := NewQuestionLoader(path)
	questions, err := loader.LoadQuestions(context.Background(), "music")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 1 || questions[0].Answer != "Ravel" {
		t.Fatalf("unexpected set %+v", questions)
	}

	ids, err := loader.SetIDs(context.Background())
	if err != nil {
		t.Fatalf("set ids: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "geo" || ids[1] != "music" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestLoadUnknownSet(t *testing.T) {
	path := writeFile(t, "q.yaml", "- prompt: x\n")
	_, err := NewQuestionLoader(path).LoadQuestions(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected ErrQuestionSetNotFound, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewQuestionLoader(filepath.Join(t.TempDir(), "missing.yaml")).LoadQuestions(context.Background(), DefaultSetID)
	if err == nil || errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestParseRejectsScalar(t *testing.T) {
	if _, err := Parse([]byte("just text")); err == nil {
		t.Fatalf("expected error for scalar document")
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	path := writeFile(t, "q.yaml", "- prompt: a\n  category: A\n")
	loader := NewQuestionLoader(path)
	first, _ := loader.LoadQuestions(context.Background(), DefaultSetID)
	first[0].Category = "mutated"
	second, _ := loader.LoadQuestions(context.Background(), DefaultSetID)
	if second[0].Category != "A" {
		t.Fatalf("loader leaked internal slice")
	}
}
