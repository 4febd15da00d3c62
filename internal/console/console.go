// Package console defines the character-grid display contract the editor
// renders against, per §6.3 of the specification: a small capability
// interface, not a terminal driver. The original kernel talks to video
// memory directly; this module never does, so every concern below is
// satisfied by an adapter instead.
package console

// Console is the display surface consumed by the editor. Rows and columns
// are both zero-based.
type Console interface {
	Clear()
	Putc(c byte)
	Write(s string)
	Backspace()
	PutcAt(row, col int, c byte)
	WriteAt(row, col int, s string)
	ClearLine(row int)
	Cursor() (row, col int)
	SetCursor(row, col int)
	Dimensions() (width, height int)
}
