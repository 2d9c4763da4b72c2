package entity

import "fmt"

// Status is the state of a game with respect to its end.
type Status int

const (
	StatusInProgress Status = iota
	StatusWin
	StatusDraw
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusWin:
		return "win"
	case StatusDraw:
		return "draw"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*s = StatusInProgress
	case "win":
		*s = StatusWin
	case "draw":
		*s = StatusDraw
	default:
		return fmt.Errorf("unknown game status %q", text)
	}

	return nil
}

// Outcome is the evaluated result of a board. Winner is set only for StatusWin.
type Outcome struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner"`
}

func InProgress() Outcome {
	return Outcome{Status: StatusInProgress}
}

func Win(mark Mark) Outcome {
	return Outcome{Status: StatusWin, Winner: mark}
}

func Draw() Outcome {
	return Outcome{Status: StatusDraw}
}

func (that Outcome) IsFinished() bool {
	return that.Status == StatusWin || that.Status == StatusDraw
}

func (that Outcome) String() string {
	if that.Status == StatusWin {
		return fmt.Sprintf("%s(%s)", that.Status, that.Winner)
	}

	return that.Status.String()
}

// GameState is everything needed to render and continue a game.
type GameState struct {
	Board         Board   `json:"board"`
	CurrentPlayer Mark    `json:"current_player"`
	MovesPlayed   int     `json:"moves_played"`
	Outcome       Outcome `json:"outcome"`
}

func (that *GameState) IsFinished() bool {
	return that.Outcome.IsFinished()
}
