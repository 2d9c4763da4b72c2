package view

import (
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// Game is what a page needs to draw the board.
type Game struct {
	Board    entity.Board  `json:"board"`
	Turn     entity.Mark   `json:"turn"`
	Moves    int           `json:"moves"`
	Status   entity.Status `json:"status"`
	Winner   entity.Mark   `json:"winner,omitempty"`
	CanReset bool          `json:"can_reset"`
	Message  string        `json:"message,omitempty"`
}

// NewGame - builds the view of a game; the start-over control is only
// offered once the game has ended.
func NewGame(state *entity.GameState) *Game {
	if state == nil {
		return nil
	}

	return &Game{
		Board:    state.Board,
		Turn:     state.CurrentPlayer,
		Moves:    state.MovesPlayed,
		Status:   state.Outcome.Status,
		Winner:   state.Outcome.Winner,
		CanReset: state.IsFinished(),
		Message:  resultMessage(state.Outcome),
	}
}

// resultMessage - the announcement shown when a game ends.
func resultMessage(outcome entity.Outcome) string {
	switch outcome.Status {
	case entity.StatusWin:
		return outcome.Winner.String() + " wins!"
	case entity.StatusDraw:
		return "It's a draw..."
	default:
		return ""
	}
}
