package memory

import (
	"testing"

	"solo-trivia/internal/app"
	"solo-trivia/internal/game"
)

func newSession(gameID string) *app.Session {
	return app.NewSession(game.NewMachine(gameID, game.NewQuestionSet(sampleQuestions()), ""), nil)
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	builds := 0
	build := func() *app.Session {
		builds++
		return newSession("g1")
	}
	session := store.GetOrCreate("g1", build)
	if session == nil {
		t.Fatalf("expected session")
	}
	if again := store.GetOrCreate("g1", build); again != session || builds != 1 {
		t.Fatalf("expected existing session to be reused, builds=%d", builds)
	}
	if _, ok := store.Get("g1"); !ok {
		t.Fatalf("expected session present")
	}

	if !store.DeleteIfIdle("g1") {
		t.Fatalf("expected idle session to be removed")
	}
	if _, ok := store.Get("g1"); ok {
		t.Fatalf("expected session removed when idle")
	}
	if store.DeleteIfIdle("g1") {
		t.Fatalf("expected no-op for missing session")
	}
}
