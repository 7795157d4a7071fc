package redis

import (
	"context"
	"testing"
	"time"

	"solo-trivia/internal/app"
	"solo-trivia/internal/game"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewSessionStore(client, time.Minute)

	session := store.GetOrCreate("g1", func() *app.Session {
		return app.NewSession(game.NewMachine("g1", game.NewQuestionSet(sampleQuestions()), ""), nil)
	})
	if session.ID() != "g1" {
		t.Fatalf("unexpected session id %q", session.ID())
	}
	if !mr.Exists("trivia:session:g1") {
		t.Fatalf("expected redis key to be set")
	}
	live, err := store.Live(context.Background(), "g1")
	if err != nil || !live {
		t.Fatalf("expected live marker, got live=%v err=%v", live, err)
	}

	if !store.DeleteIfIdle("g1") {
		t.Fatalf("expected idle session to be removed")
	}
	if mr.Exists("trivia:session:g1") {
		t.Fatalf("expected redis key to be removed")
	}
	live, err = store.Live(context.Background(), "g1")
	if err != nil || live {
		t.Fatalf("expected no live marker, got live=%v err=%v", live, err)
	}
}

func TestSessionMarkerExpires(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewSessionStore(client, time.Minute)
	store.GetOrCreate("g1", func() *app.Session {
		return app.NewSession(game.NewMachine("g1", game.NewQuestionSet(sampleQuestions()), ""), nil)
	})

	mr.FastForward(2 * time.Minute)
	if mr.Exists("trivia:session:g1") {
		t.Fatalf("expected marker to expire")
	}
	if _, ok := store.Get("g1"); !ok {
		t.Fatalf("local session should outlive its marker")
	}
}
