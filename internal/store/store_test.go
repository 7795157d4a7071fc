package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"solo-trivia/internal/domain"
	"solo-trivia/internal/infra/memory"
	"solo-trivia/internal/store"
)

var keys = store.Keys{Prefix: "trivia:solo", GameID: "g1"}

func playedState() (domain.GameState, []domain.ResultRow) {
	armed := 1
	correct := true
	state := domain.NewGameState("Ada")
	state.Index = 2
	state.Stage = domain.StageAnswer
	state.Player = domain.PlayerState{Name: "Ada", Score: 5, Streak: 2, MaxStreak: 2}
	state.X2 = domain.X2State{Available: false, ArmedIndex: &armed}
	state.Wager = domain.WagerState{Amount: 2}
	state.Answered = domain.AnsweredMap{0: domain.TagCorrect, 1: domain.TagCorrect}
	state.LastOutcomeSide = domain.SoloSide
	results := []domain.ResultRow{
		{Index: 0, Category: "A", Points: 1, Correct: &correct, Delta: 1, RunningTotal: 1},
		{Index: 1, Category: "B", Points: 2, Correct: &correct, X2Applied: true, Delta: 4, RunningTotal: 5},
	}
	return state, results
}

func TestKeysLayout(t *testing.T) {
	if got := keys.Key(store.FieldFinalResolution); got != "trivia:solo:g1:finalResolution" {
		t.Fatalf("unexpected key %q", got)
	}
	if len(store.Fields) != 9 {
		t.Fatalf("expected 9 fields, got %d", len(store.Fields))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	state, results := playedState()

	if err := store.Save(ctx, kv, keys, state, results); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.Len() != len(store.Fields) {
		t.Fatalf("expected one key per field, got %d", kv.Len())
	}

	got, rows := store.Load(ctx, kv, keys, "Other", zap.NewNop())
	if got.Index != 2 || got.Stage != domain.StageAnswer || got.Player != state.Player {
		t.Fatalf("unexpected state %+v", got)
	}
	if got.X2.ArmedIndex == nil || *got.X2.ArmedIndex != 1 || got.X2.Available {
		t.Fatalf("unexpected x2 %+v", got.X2)
	}
	if got.Wager.Amount != 2 || got.Answered[1] != domain.TagCorrect || got.LastOutcomeSide != domain.SoloSide {
		t.Fatalf("unexpected state %+v", got)
	}
	if len(rows) != 2 || !rows[1].X2Applied || rows[1].RunningTotal != 5 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestEncodeEmptySideAsNull(t *testing.T) {
	values, err := store.Encode(domain.NewGameState(""), nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(values[store.FieldLastOutcomeSide]) != "null" {
		t.Fatalf("expected null side, got %s", values[store.FieldLastOutcomeSide])
	}
	if string(values[store.FieldResults]) != "[]" || string(values[store.FieldAnswered]) != "{}" {
		t.Fatalf("expected empty collections, got %s %s", values[store.FieldResults], values[store.FieldAnswered])
	}
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	got, rows := store.Load(context.Background(), memory.NewKVStore(), keys, "", nil)
	fresh := domain.NewGameState("")
	if got.Index != 0 || got.Stage != domain.StageCategory || got.Player.Name != domain.DefaultPlayerName {
		t.Fatalf("expected fresh state, got %+v", got)
	}
	if !got.X2.Available || got.Answered == nil || len(rows) != 0 || got.Player != fresh.Player {
		t.Fatalf("expected defaults, got %+v rows=%v", got, rows)
	}
}

func TestLoadFallsBackPerField(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	_ = kv.Save(ctx, keys.Key(store.FieldIndex), []byte("3"))
	_ = kv.Save(ctx, keys.Key(store.FieldStage), []byte(`"sideways"`))
	_ = kv.Save(ctx, keys.Key(store.FieldPlayer), []byte(`{"name":`))
	_ = kv.Save(ctx, keys.Key(store.FieldWager), []byte(`{"amount":2}`))

	core, logs := observer.New(zapcore.WarnLevel)
	got, _ := store.Load(ctx, kv, keys, "Ada", zap.New(core))

	if got.Index != 3 || got.Wager.Amount != 2 {
		t.Fatalf("expected valid fields kept, got %+v", got)
	}
	if got.Stage != domain.StageCategory {
		t.Fatalf("expected default stage for unknown value, got %s", got.Stage)
	}
	if got.Player.Name != "Ada" || got.Player.Score != 0 {
		t.Fatalf("expected default player for malformed value, got %+v", got.Player)
	}
	if logs.Len() != 2 {
		t.Fatalf("expected two warnings, got %d", logs.Len())
	}
}

func TestLoadToleratesReadFailures(t *testing.T) {
	kv := &failingKV{loadErr: errors.New("connection refused")}
	got, rows := store.Load(context.Background(), kv, keys, "Ada", zap.NewNop())
	if got.Player.Name != "Ada" || got.Stage != domain.StageCategory || rows != nil {
		t.Fatalf("expected defaults on read failure, got %+v", got)
	}
}

func TestSaveJoinsFailures(t *testing.T) {
	boom := errors.New("disk full")
	kv := &failingKV{saveErr: boom}
	state, results := playedState()
	err := store.Save(context.Background(), kv, keys, state, results)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if kv.saves != len(store.Fields) {
		t.Fatalf("expected every field attempted, got %d", kv.saves)
	}
}

func TestWriteBehindFlushAndClose(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	w := store.NewWriteBehind(kv, keys, zap.NewNop(), time.Second)

	state, results := playedState()
	w.Persist(domain.NewGameState("Ada"), nil)
	w.Persist(state, results)
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got, rows := store.Load(ctx, kv, keys, "", zap.NewNop())
	if got.Index != 2 || len(rows) != 2 {
		t.Fatalf("expected latest state written, got %+v", got)
	}

	state.Index = 0
	w.Persist(state, results)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, _ = store.Load(ctx, kv, keys, "", zap.NewNop())
	if got.Index != 0 {
		t.Fatalf("expected pending state written on close, got index %d", got.Index)
	}

	// Closed writers ignore further work.
	state.Index = 1
	w.Persist(state, results)
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush after close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	got, _ = store.Load(ctx, kv, keys, "", zap.NewNop())
	if got.Index != 0 {
		t.Fatalf("expected no writes after close, got index %d", got.Index)
	}
}

func TestWriteBehindLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := store.NewWriteBehind(&failingKV{saveErr: errors.New("down")}, keys, zap.New(core), time.Second)
	w.Persist(domain.NewGameState(""), nil)
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	_ = w.Close()
	if logs.FilterMessage("persist game state failed").Len() != 1 {
		t.Fatalf("expected one failure log, got %d", logs.Len())
	}
}

type failingKV struct {
	mu      sync.Mutex
	loadErr error
	saveErr error
	saves   int
}

func (f *failingKV) Load(context.Context, string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return nil, domain.ErrKeyNotFound
}

func (f *failingKV) Save(context.Context, string, []byte) error {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	return f.saveErr
}
