package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, sessionID string, state *entity.GameState) error
	GetBySessionID(ctx context.Context, sessionID string) (*entity.GameState, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// GameManager runs one game per browser session. Every operation on a
// session holds that session's lock from load to save.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	locks    *sessionLocks
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		locks:    newSessionLocks(),
	}
}

// Connect - returns the session's game, starting one if there is none.
func (that *GameManager) Connect(ctx context.Context, sessionID string) (*entity.GameState, error) {
	if sessionID == "" {
		return nil, apperror.ErrSessionIsRequired
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	state, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create game: %w", err)
	}

	return state, nil
}

// MakeMove - applies a move to the session's game. Rejected moves are
// reported through the result with a nil error and the game unchanged.
func (that *GameManager) MakeMove(ctx context.Context, sessionID string, coord entity.Coord) (*entity.GameState, tictactoe.MoveResult, error) {
	log := that.logger.With("method", "MakeMove", "session", sessionID, "cell", coord.CellID())

	if sessionID == "" {
		return nil, tictactoe.MoveInvalidCell, apperror.ErrSessionIsRequired
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	state, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, tictactoe.MoveInvalidCell, fmt.Errorf("failed to get or create game: %w", err)
	}

	engine := tictactoe.Resume(*state)
	result := engine.ApplyMove(coord.Row, coord.Col)

	switch result {
	case tictactoe.MoveAccepted:
	case tictactoe.MoveInvalidCell:
		return state, result, fmt.Errorf("%w: %s", apperror.ErrInvalidCell, coord.CellID())
	default:
		log.Debug("move rejected", "reason", result.String())
		return state, result, nil
	}

	next := engine.State()
	if err = that.updateGame(ctx, sessionID, &next); err != nil {
		return nil, result, err
	}

	if next.IsFinished() {
		log.Info("game finished", "outcome", next.Outcome, "moves", next.MovesPlayed, "board", next.Board.String())
	}

	return &next, result, nil
}

// Reset - throws the session's game away and starts a new one.
func (that *GameManager) Reset(ctx context.Context, sessionID string) (*entity.GameState, error) {
	log := that.logger.With("method", "Reset", "session", sessionID)

	if sessionID == "" {
		return nil, apperror.ErrSessionIsRequired
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	movesDiscarded := 0

	previous, err := that.gameRepo.GetBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		movesDiscarded = previous.MovesPlayed
	case !errors.Is(err, repository.ErrGameNotFound):
		log.Warn("previous game is unreadable, overwriting it", "error", err)
	}

	state := tictactoe.Initialize()
	if err = that.updateGame(ctx, sessionID, &state); err != nil {
		return nil, err
	}

	log.Info("game reset", "moves_discarded", movesDiscarded)

	return &state, nil
}

// EndSession - forgets the session's game.
func (that *GameManager) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.ErrSessionIsRequired
	}

	unlock := that.locks.lock(sessionID)
	defer unlock()

	err := that.gameRepo.DeleteBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *GameManager) getOrCreateGame(ctx context.Context, sessionID string) (*entity.GameState, error) {
	state, err := that.gameRepo.GetBySessionID(ctx, sessionID)
	if err == nil {
		return state, nil
	}

	if !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	newGame := tictactoe.Initialize()
	if err = that.updateGame(ctx, sessionID, &newGame); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "session", sessionID)

	return &newGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, sessionID string, state *entity.GameState) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, sessionID, state); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
