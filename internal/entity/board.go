package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize

	cellIDSeparator = "|"
)

// Coord addresses a cell by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Coord) Valid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// CellID - returns the "row|col" identifier a page uses for the cell.
func (that Coord) CellID() string {
	return strconv.Itoa(that.Row) + cellIDSeparator + strconv.Itoa(that.Col)
}

// ParseCellID - converts a "row|col" identifier into a grid coordinate.
func ParseCellID(id string) (Coord, error) {
	rowText, colText, ok := strings.Cut(id, cellIDSeparator)
	if !ok {
		return Coord{}, fmt.Errorf("%w: %q", apperror.ErrInvalidCell, id)
	}

	row, err := strconv.Atoi(rowText)
	if err != nil {
		return Coord{}, fmt.Errorf("%w: row %q", apperror.ErrInvalidCell, rowText)
	}

	col, err := strconv.Atoi(colText)
	if err != nil {
		return Coord{}, fmt.Errorf("%w: column %q", apperror.ErrInvalidCell, colText)
	}

	coord := Coord{Row: row, Col: col}
	if !coord.Valid() {
		return Coord{}, fmt.Errorf("%w: %q is outside the board", apperror.ErrInvalidCell, id)
	}

	return coord, nil
}

// Board is the fixed 3×3 grid, indexed [row][col].
type Board [BoardSize][BoardSize]Mark

func (that *Board) At(c Coord) Mark {
	return that[c.Row][c.Col]
}

// Filled - counts the non-empty cells.
func (that *Board) Filled() int {
	filled := 0
	for _, row := range that {
		for _, cell := range row {
			if cell != MarkEmpty {
				filled++
			}
		}
	}

	return filled
}

func (that *Board) String() string {
	var sb strings.Builder
	for _, row := range that {
		for _, cell := range row {
			mark := cell.String()
			if mark == "" {
				mark = " "
			}
			sb.WriteString("[" + mark + "]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
