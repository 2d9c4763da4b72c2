package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/transport/view"
)

func (that *Server) handleConnect(ctx context.Context, sessionID string, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleConnect", "session", sessionID)

	game, err := that.uGame.Connect(ctx, sessionID)
	if err != nil {
		log.Error("failed to connect to game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the game")
	}

	return that.sendMessage(conn, msg.Action, Payload{Game: view.NewGame(game)})
}

func (that *Server) handleMove(ctx context.Context, sessionID string, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMove", "session", sessionID)

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "malformed payload")
	}

	if payloadReq.Cell == "" {
		return that.sendErrorResponse(conn, msg.Action, "Cell is required")
	}

	coord, err := entity.ParseCellID(payloadReq.Cell)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	game, result, err := that.uGame.MakeMove(ctx, sessionID, coord)
	if errors.Is(err, apperror.ErrInvalidCell) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to make move", "error", err)
		return that.sendErrorResponse(conn, msg.Action, fmt.Sprintf("failed to make move: %v", err))
	}

	payloadResp := Payload{Game: view.NewGame(game)}
	if !result.Accepted() {
		payloadResp.Rejected = result.String()
	}

	return that.sendMessage(conn, msg.Action, payloadResp)
}

func (that *Server) handleReset(ctx context.Context, sessionID string, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleReset", "session", sessionID)

	game, err := that.uGame.Reset(ctx, sessionID)
	if err != nil {
		log.Error("failed to reset game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to reset the game")
	}

	return that.sendMessage(conn, msg.Action, Payload{Game: view.NewGame(game)})
}
