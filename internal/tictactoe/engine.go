package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// MoveResult reports what ApplyMove did with a move.
type MoveResult int

const (
	MoveAccepted MoveResult = iota
	MoveRejectedOccupied
	MoveRejectedFinished
	MoveInvalidCell
)

func (r MoveResult) String() string {
	switch r {
	case MoveAccepted:
		return "accepted"
	case MoveRejectedOccupied:
		return "cell_occupied"
	case MoveRejectedFinished:
		return "game_finished"
	case MoveInvalidCell:
		return "invalid_cell"
	default:
		return "unknown"
	}
}

// Accepted - true when the move changed the game.
func (r MoveResult) Accepted() bool {
	return r == MoveAccepted
}

// lines lists every winning line in evaluation order: each row and column
// interleaved by index, then both diagonals.
var lines = [][3]entity.Coord{
	{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}},
	{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}},
	{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1}},
	{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
	{{Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 0}},
}

// Initialize - returns the state of a game nobody has moved in yet.
func Initialize() entity.GameState {
	return entity.GameState{
		CurrentPlayer: entity.MarkX,
		Outcome:       entity.InProgress(),
	}
}

// ApplyMove - places the current player's mark at coord. A rejected or
// invalid move returns the state unchanged.
func ApplyMove(state entity.GameState, coord entity.Coord) (entity.GameState, MoveResult) {
	if state.IsFinished() {
		return state, MoveRejectedFinished
	}

	if !coord.Valid() {
		return state, MoveInvalidCell
	}

	if state.Board.At(coord) != entity.MarkEmpty {
		return state, MoveRejectedOccupied
	}

	state.Board[coord.Row][coord.Col] = state.CurrentPlayer
	state.MovesPlayed++
	state.Outcome = EvaluateOutcome(state.Board)

	// the turn passes even when the move ended the game
	state.CurrentPlayer = state.CurrentPlayer.Opponent()

	return state, MoveAccepted
}

// EvaluateOutcome - reports the first completed line as a win, a full board
// without one as a draw, and anything else as in progress.
func EvaluateOutcome(board entity.Board) entity.Outcome {
	for _, line := range lines {
		a, b, c := board.At(line[0]), board.At(line[1]), board.At(line[2])
		if a != entity.MarkEmpty && a == b && b == c {
			return entity.Win(a)
		}
	}

	if board.Filled() == entity.CellCount {
		return entity.Draw()
	}

	return entity.InProgress()
}

// Engine owns one game and is the only thing that mutates it.
type Engine struct {
	state entity.GameState
}

func NewEngine() *Engine {
	return &Engine{state: Initialize()}
}

// Resume - wraps a previously saved state.
func Resume(state entity.GameState) *Engine {
	return &Engine{state: state}
}

func (that *Engine) ApplyMove(row, col int) MoveResult {
	var result MoveResult
	that.state, result = ApplyMove(that.state, entity.Coord{Row: row, Col: col})

	return result
}

// Reset - discards the current game and starts a new one.
func (that *Engine) Reset() entity.GameState {
	that.state = Initialize()

	return that.state
}

// State - returns a copy of the current game.
func (that *Engine) State() entity.GameState {
	return that.state
}
