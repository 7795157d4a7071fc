// Package store persists game state as one JSON value per field under a
// shared key prefix. Reads tolerate absent or corrupt values by falling
// back to defaults; writes are best effort.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"solo-trivia/internal/domain"
)

// KV is the durable key/value contract. Load returns domain.ErrKeyNotFound
// for absent keys.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Field names, one key each.
const (
	FieldIndex           = "index"
	FieldStage           = "stage"
	FieldPlayer          = "player"
	FieldX2              = "x2"
	FieldWager           = "wager"
	FieldFinalResolution = "finalResolution"
	FieldAnswered        = "answered"
	FieldLastOutcomeSide = "lastOutcomeSide"
	FieldResults         = "results"
)

// Fields lists every persisted field in write order.
var Fields = []string{
	FieldIndex,
	FieldStage,
	FieldPlayer,
	FieldX2,
	FieldWager,
	FieldFinalResolution,
	FieldAnswered,
	FieldLastOutcomeSide,
	FieldResults,
}

// Keys builds the namespaced keys of one game.
type Keys struct {
	Prefix string
	GameID string
}

// Key returns the key of field.
func (k Keys) Key(field string) string {
	return k.Prefix + ":" + k.GameID + ":" + field
}

// Encode serialises state and results into field → JSON value.
func Encode(state domain.GameState, results []domain.ResultRow) (map[string][]byte, error) {
	var side *string
	if state.LastOutcomeSide != "" {
		s := state.LastOutcomeSide
		side = &s
	}
	if results == nil {
		results = []domain.ResultRow{}
	}
	answered := state.Answered
	if answered == nil {
		answered = domain.AnsweredMap{}
	}
	values := map[string]any{
		FieldIndex:           state.Index,
		FieldStage:           state.Stage,
		FieldPlayer:          state.Player,
		FieldX2:              state.X2,
		FieldWager:           state.Wager,
		FieldFinalResolution: state.FinalResolution,
		FieldAnswered:        answered,
		FieldLastOutcomeSide: side,
		FieldResults:         results,
	}
	out := make(map[string][]byte, len(values))
	for field, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", field, err)
		}
		out[field] = raw
	}
	return out, nil
}

// Load reads every field of a game. A field that is absent, unreadable or
// malformed keeps its fresh-game default; unreadable and malformed fields
// are logged. Load never fails.
func Load(ctx context.Context, kv KV, keys Keys, playerName string, logger *zap.Logger) (domain.GameState, []domain.ResultRow) {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := domain.NewGameState(playerName)
	var results []domain.ResultRow

	targets := map[string]any{
		FieldIndex:           &state.Index,
		FieldStage:           &state.Stage,
		FieldPlayer:          &state.Player,
		FieldX2:              &state.X2,
		FieldWager:           &state.Wager,
		FieldFinalResolution: &state.FinalResolution,
		FieldAnswered:        &state.Answered,
		FieldLastOutcomeSide: &state.LastOutcomeSide,
		FieldResults:         &results,
	}
	for _, field := range Fields {
		key := keys.Key(field)
		raw, err := kv.Load(ctx, key)
		if errors.Is(err, domain.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			logger.Warn("state field unreadable, using default", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := decodeField(field, raw, targets[field]); err != nil {
			logger.Warn("state field malformed, using default", zap.String("key", key), zap.Error(err))
		}
	}
	if state.Answered == nil {
		state.Answered = domain.AnsweredMap{}
	}
	return state, results
}

// decodeField unmarshals into a scratch value first so that a malformed
// payload leaves the default untouched.
func decodeField(field string, raw []byte, target any) error {
	switch t := target.(type) {
	case *int:
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *domain.Stage:
		var v domain.Stage
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if !v.Valid() {
			return fmt.Errorf("unknown stage %q", v)
		}
		*t = v
	case *domain.PlayerState:
		var v domain.PlayerState
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if v.Name == "" {
			v.Name = t.Name
		}
		*t = v
	case *domain.X2State:
		var v domain.X2State
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *domain.WagerState:
		var v domain.WagerState
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *domain.FinalResolution:
		var v domain.FinalResolution
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *domain.AnsweredMap:
		var v domain.AnsweredMap
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	case *string:
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if v == nil {
			*t = ""
		} else {
			*t = *v
		}
	case *[]domain.ResultRow:
		var v []domain.ResultRow
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*t = v
	default:
		return fmt.Errorf("no decoder for field %s", field)
	}
	return nil
}

// Save writes every field, continuing past failures. The returned error
// joins all write failures.
func Save(ctx context.Context, kv KV, keys Keys, state domain.GameState, results []domain.ResultRow) error {
	values, err := Encode(state, results)
	if err != nil {
		return err
	}
	var errs []error
	for _, field := range Fields {
		key := keys.Key(field)
		if err := kv.Save(ctx, key, values[field]); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
