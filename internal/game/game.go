package game

import (
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board boundaries
	BorderMin = 0
	BorderMax = 2
)

// Opponent returns the other side. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// IsSide reports whether m is X or O.
func (m PlayerMark) IsSide() bool {
	return m == PlayerX || m == PlayerO
}

// Move is a (row, column) coordinate on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Move) String() string {
	return fmt.Sprintf("(%d, %d)", m.Row, m.Col)
}

// lines holds the 8 winning lines: 3 rows, 3 columns and 2 diagonals.
var lines = [8][3]Move{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is the 3x3 grid. The zero value is an empty board and copying the value
// copies every cell.
type Board [3][3]PlayerMark

func inRange(row, col int) bool {
	return row >= BorderMin && row <= BorderMax && col >= BorderMin && col <= BorderMax
}

// Place puts side's mark into an empty cell.
func (b *Board) Place(row, col int, side PlayerMark) error {
	if !side.IsSide() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidMove, side)
	}
	if !inRange(row, col) {
		return fmt.Errorf("%w: cell (%d, %d) out of range", ErrInvalidMove, row, col)
	}
	if b[row][col] != None {
		return fmt.Errorf("%w: cell (%d, %d) already occupied", ErrInvalidMove, row, col)
	}

	b[row][col] = side
	return nil
}

// IsWinner reports whether side holds any complete line.
func (b Board) IsWinner(side PlayerMark) bool {
	if !side.IsSide() {
		return false
	}
	won := false
	for _, line := range lines {
		if b[line[0].Row][line[0].Col] == side &&
			b[line[1].Row][line[1].Col] == side &&
			b[line[2].Row][line[2].Col] == side {
			won = true
		}
	}
	return won
}

// IsFull reports whether every cell holds a mark.
func (b Board) IsFull() bool {
	for r := range [3]int{} {
		for c := range [3]int{} {
			if b[r][c] == None {
				return false
			}
		}
	}
	return true
}

// EmptyCells lists the empty cells in row-major order.
func (b Board) EmptyCells() []Move {
	moves := make([]Move, 0, 9)
	for r := range [3]int{} {
		for c := range [3]int{} {
			if b[r][c] == None {
				moves = append(moves, Move{Row: r, Col: c})
			}
		}
	}
	return moves
}

// Clone returns an independent copy of the board.
func (b Board) Clone() Board {
	return b
}

// Counts returns how many X and O marks are on the board.
func (b Board) Counts() (x, o int) {
	for r := range [3]int{} {
		for c := range [3]int{} {
			switch b[r][c] {
			case PlayerX:
				x++
			case PlayerO:
				o++
			}
		}
	}
	return x, o
}

// Outcome derives the game outcome from the board. X is checked first; a board
// where both sides won cannot come out of legal play.
func (b Board) Outcome() Outcome {
	switch {
	case b.IsWinner(PlayerX):
		return Outcome{Status: Win, Winner: PlayerX}
	case b.IsWinner(PlayerO):
		return Outcome{Status: Win, Winner: PlayerO}
	case b.IsFull():
		return Outcome{Status: Draw}
	default:
		return Outcome{Status: InProgress}
	}
}

// Rows converts the board to a slice of slices, the shape used on the wire.
func (b Board) Rows() [][]PlayerMark {
	rows := make([][]PlayerMark, 3)
	for i := range [3]int{} {
		rows[i] = make([]PlayerMark, 3)
		copy(rows[i], b[i][:])
	}
	return rows
}

func (b Board) String() string {
	var sb strings.Builder
	for r := range [3]int{} {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := range [3]int{} {
			if b[r][c] == None {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(string(b[r][c]))
		}
	}
	return sb.String()
}

// ParseBoard reads three rows of three cells, the inverse of String. Empty cells
// may be written as '.', '-' or ' '.
func ParseBoard(rows []string) (Board, error) {
	var b Board
	if len(rows) != 3 {
		return b, fmt.Errorf("%w: want 3 rows, got %d", ErrInvalidBoard, len(rows))
	}
	for r, row := range rows {
		if len(row) != 3 {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, r, len(row))
		}
		for c := range row {
			switch row[c] {
			case 'X', 'x':
				b[r][c] = PlayerX
			case 'O', 'o':
				b[r][c] = PlayerO
			case '.', '-', ' ':
			default:
				return b, fmt.Errorf("%w: unknown cell %q at (%d, %d)", ErrInvalidBoard, row[c], r, c)
			}
		}
	}
	return b, nil
}
