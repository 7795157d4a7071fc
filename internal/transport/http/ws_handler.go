package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"solo-trivia/internal/app"
	"solo-trivia/internal/domain"
)

type WSHandler struct {
	service    *app.GameService
	defaultSet string
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultSet string, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service:    service,
		defaultSet: defaultSet,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wagerPayload struct {
	Amount int `json:"amount"`
}

type outcomePayload struct {
	Outcome domain.Outcome `json:"outcome"`
}

type renamePayload struct {
	Name string `json:"name"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type blockedPayload struct {
	Action domain.Action `json:"action"`
	Reason string        `json:"reason"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	setID := r.URL.Query().Get("set")
	playerName := r.URL.Query().Get("name")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}
	if setID == "" {
		setID = h.defaultSet
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if _, err := h.service.Open(ctx, gameID, setID, playerName); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Release(context.Background(), gameID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("game_id", gameID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.dispatch(ctx, gameID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch runs one inbound message. Successful actions reach the client
// through its subscription; only rejections are answered directly.
func (h *WSHandler) dispatch(ctx context.Context, gameID string, inbound inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch domain.Action(inbound.Type) {
	case domain.ActionNext:
		_, err = h.service.Next(ctx, gameID)
	case domain.ActionPrevious:
		_, err = h.service.Previous(ctx, gameID)
	case domain.ActionArmX2:
		_, err = h.service.ArmX2(ctx, gameID)
	case domain.ActionSetWager:
		var payload wagerPayload
		if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
			return errorMessage("invalid setWager payload"), true
		}
		_, err = h.service.SetWager(ctx, gameID, payload.Amount)
	case domain.ActionAward:
		var payload outcomePayload
		if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
			return errorMessage("invalid award payload"), true
		}
		_, err = h.service.Award(ctx, gameID, payload.Outcome)
	case domain.ActionResolveFinal:
		var payload outcomePayload
		if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
			return errorMessage("invalid resolveFinal payload"), true
		}
		_, err = h.service.ResolveFinal(ctx, gameID, payload.Outcome)
	case domain.ActionReset:
		_, err = h.service.Reset(ctx, gameID)
	case domain.ActionRename:
		var payload renamePayload
		if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
			return errorMessage("invalid rename payload"), true
		}
		_, err = h.service.Rename(ctx, gameID, payload.Name)
	default:
		return errorMessage("unsupported message type"), true
	}
	if err == nil {
		return outboundMessage[any]{}, false
	}

	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		return outboundMessage[any]{Type: "blocked", Payload: blockedPayload{Action: blocked.Action, Reason: blocked.Reason}}, true
	}
	return errorMessage(err.Error()), true
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
