// Package render draws boards, outcomes and the tally for the terminal game.
package render

import (
	"fmt"
	"io"
	"strings"

	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"

	"github.com/muesli/termenv"
)

const (
	colorX    = "#E06C75"
	colorO    = "#61AFEF"
	colorDim  = "#5C6370"
	colorGood = "#98C379"
)

type Renderer struct {
	out *termenv.Output
}

// New creates a renderer writing to w. Colour support is detected from w unless
// opts set a profile.
func New(w io.Writer, opts ...termenv.OutputOption) *Renderer {
	return &Renderer{out: termenv.NewOutput(w, opts...)}
}

func (r *Renderer) mark(m game.PlayerMark) string {
	switch m {
	case game.PlayerX:
		return r.out.String("X").Foreground(r.out.Color(colorX)).Bold().String()
	case game.PlayerO:
		return r.out.String("O").Foreground(r.out.Color(colorO)).Bold().String()
	default:
		return r.out.String(".").Foreground(r.out.Color(colorDim)).String()
	}
}

// Board returns the board as a grid with row and column indices.
func (r *Renderer) Board(b game.Board) string {
	var sb strings.Builder
	sb.WriteString("   0   1   2\n")
	for row := range [3]int{} {
		if row > 0 {
			sb.WriteString("  ---+---+---\n")
		}
		fmt.Fprintf(&sb, "%d ", row)
		for col := range [3]int{} {
			if col > 0 {
				sb.WriteString("|")
			}
			fmt.Fprintf(&sb, " %s ", r.mark(b[row][col]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Status describes the state line under the board.
func (r *Renderer) Status(state session.Snapshot, name func(game.PlayerMark) string) string {
	switch state.Outcome.Status {
	case game.Win:
		msg := fmt.Sprintf("%s (%s) wins!", name(state.Outcome.Winner), r.mark(state.Outcome.Winner))
		return r.out.String(msg).Foreground(r.out.Color(colorGood)).String()
	case game.Draw:
		return r.out.String("It's a draw.").Foreground(r.out.Color(colorDim)).String()
	default:
		return fmt.Sprintf("%s (%s) to move", name(state.Turn), r.mark(state.Turn))
	}
}

// Scores formats the tally.
func (r *Renderer) Scores(t session.Tally) string {
	return fmt.Sprintf("Score  %s %d  %s %d  draw %d", r.mark(game.PlayerX), t.X, r.mark(game.PlayerO), t.O, t.Draw)
}

// Frame writes the whole screen for state.
func (r *Renderer) Frame(state session.Snapshot, name func(game.PlayerMark) string) {
	fmt.Fprintf(r.out, "\n%s\n%s\n%s\n", r.Board(state.Board), r.Status(state, name), r.Scores(state.Scores))
}

// Line writes a single message.
func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}
