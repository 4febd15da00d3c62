package console

import (
	"fmt"
	"io"
)

// ANSI is a Console that renders to any terminal understanding basic
// cursor-addressing escape sequences. Rows/cols are zero-based here and
// translated to the 1-based coordinates ANSI expects.
type ANSI struct {
	out           io.Writer
	width, height int
	row, col      int
}

// NewANSI wraps out, reporting a fixed width×height — the original
// console's get_dimensions is likewise a fixed compile-time grid, not a
// live terminal query.
func NewANSI(out io.Writer, width, height int) *ANSI {
	return &ANSI{out: out, width: width, height: height}
}

func (a *ANSI) Clear() {
	fmt.Fprint(a.out, "\x1b[2J\x1b[H")
	a.row, a.col = 0, 0
}

func (a *ANSI) moveTo(row, col int) {
	fmt.Fprintf(a.out, "\x1b[%d;%dH", row+1, col+1)
}

func (a *ANSI) Putc(c byte) {
	a.moveTo(a.row, a.col)
	fmt.Fprintf(a.out, "%c", c)
	a.col++
	if a.col >= a.width {
		a.col = 0
		a.row++
	}
}

func (a *ANSI) Write(s string) {
	for i := 0; i < len(s); i++ {
		a.Putc(s[i])
	}
}

func (a *ANSI) Backspace() {
	if a.col > 0 {
		a.col--
		a.moveTo(a.row, a.col)
		fmt.Fprint(a.out, " ")
		a.moveTo(a.row, a.col)
	}
}

func (a *ANSI) PutcAt(row, col int, c byte) {
	a.moveTo(row, col)
	fmt.Fprintf(a.out, "%c", c)
}

func (a *ANSI) WriteAt(row, col int, s string) {
	a.moveTo(row, col)
	fmt.Fprint(a.out, s)
}

func (a *ANSI) ClearLine(row int) {
	a.moveTo(row, 0)
	fmt.Fprint(a.out, "\x1b[2K")
}

func (a *ANSI) Cursor() (row, col int) { return a.row, a.col }

func (a *ANSI) SetCursor(row, col int) {
	a.row, a.col = row, col
	a.moveTo(row, col)
}

func (a *ANSI) Dimensions() (width, height int) { return a.width, a.height }
