package entity

import "fmt"

// Mark is the value of a single board cell.
type Mark int

const (
	MarkEmpty Mark = iota
	MarkX
	MarkO
)

func (m Mark) String() string {
	switch m {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other player's mark; MarkEmpty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkEmpty
	}
}

func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*m = MarkEmpty
	case "X":
		*m = MarkX
	case "O":
		*m = MarkO
	default:
		return fmt.Errorf("unknown mark %q", text)
	}

	return nil
}
