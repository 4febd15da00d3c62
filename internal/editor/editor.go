package editor

import (
	"errors"
	"strconv"

	"github.com/fat16os/fat16os/internal/console"
	"github.com/fat16os/fat16os/internal/fat"
	"github.com/fat16os/fat16os/internal/keyboard"
)

// bufferReadLimit bounds how large a file Load will accept, matching the
// buffer's own capacity.
const bufferReadLimit = maxSize - 1

// Editor runs one editing session. It holds its collaborators by
// interface — the volume, the console, the keyboard — per the
// specification's Design Notes on replacing process-wide globals with an
// owning structure threaded through every call.
type Editor struct {
	vol *fat.Volume
	con console.Console
	kb  keyboard.Keyboard
	buf *Buffer

	running bool
}

// New builds an Editor for filename, bound to vol/con/kb. Nothing is read
// from disk until Run is called.
func New(vol *fat.Volume, con console.Console, kb keyboard.Keyboard, filename string) *Editor {
	return &Editor{
		vol: vol,
		con: con,
		kb:  kb,
		buf: newBuffer(filename),
	}
}

// Buffer exposes the session's buffer, mainly for tests asserting on
// state without driving the console loop.
func (e *Editor) Buffer() *Buffer { return e.buf }

// load implements §4.3.5: a "Not found" failure starts a fresh buffer
// with status "New file"; any other failure propagates and aborts the
// session.
func (e *Editor) load() error {
	data, err := e.vol.Read(e.buf.filename, bufferReadLimit)
	if err != nil {
		if errors.Is(err, fat.SentinelNotFound) {
			e.buf.reset()
			return nil
		}
		return err
	}
	e.buf.load(data)
	return nil
}

// save writes the buffer's contents back to the volume, per §4.3.4's
// Ctrl+S handling.
func (e *Editor) save() {
	if err := e.vol.Write(e.buf.filename, e.buf.data); err != nil {
		e.buf.setStatus(err.Error())
		return
	}
	e.buf.dirty = false
	e.buf.setStatus("Saved")
}

// scrollToCursor adjusts scrollRow so the cursor's visual row stays
// within the visible text rows, per §4.3.2.
func (e *Editor) scrollToCursor(width, height int) {
	row, _ := visualOf(e.buf.data, e.buf.cursor, width)
	textHeight := height - 1

	if uint32(row) < e.buf.scrollRow {
		e.buf.scrollRow = uint32(row)
	} else if row >= int(e.buf.scrollRow)+textHeight {
		e.buf.scrollRow = uint32(row - textHeight + 1)
	}
}

// render draws the visible text rows, the cursor glyph, and the status
// line, per §4.3.3.
func (e *Editor) render() {
	width, height := e.con.Dimensions()
	e.scrollToCursor(width, height)

	for r := 0; r < height; r++ {
		e.con.ClearLine(r)
	}

	textHeight := height - 1
	idx := indexOfRow(e.buf.data, int(e.buf.scrollRow), width)
	row, col := 0, 0
	for idx < len(e.buf.data) && row < textHeight {
		c := e.buf.data[idx]
		idx++
		if c == '\n' {
			row++
			col = 0
			continue
		}
		e.con.PutcAt(row, col, c)
		col++
		if col >= width {
			row++
			col = 0
		}
	}

	curRow, curCol := visualOf(e.buf.data, e.buf.cursor, width)
	if curRow >= int(e.buf.scrollRow) && curRow < int(e.buf.scrollRow)+textHeight {
		e.con.PutcAt(curRow-int(e.buf.scrollRow), curCol, '_')
	}

	statusLine := "v " + e.buf.filename + "  Ln " + strconv.Itoa(curRow+1) + " Col " + strconv.Itoa(curCol+1)
	if e.buf.dirty {
		statusLine += "  *"
	}

	lastRow := height - 1
	e.con.ClearLine(lastRow)
	e.con.WriteAt(lastRow, 0, statusLine)

	if e.buf.statusMsg != "" {
		col := 0
		if width > 30 {
			col = width - 30
		}
		e.con.WriteAt(lastRow, col, e.buf.statusMsg)
	}
}

// dispatch applies one key to the buffer, per §4.3.4's table. It returns
// false when the session should exit its main loop.
func (e *Editor) dispatch(key int) bool {
	width, _ := e.con.Dimensions()

	switch key {
	case keyboard.KeyUp:
		e.buf.moveUp(width)
	case keyboard.KeyDown:
		e.buf.moveDown(width)
	case keyboard.KeyLeft:
		e.buf.moveLeft()
	case keyboard.KeyRight:
		e.buf.moveRight()
	case keyboard.KeyBackspace:
		e.buf.backspace()
	case keyboard.KeyNewline:
		e.buf.insertChar('\n')
	case keyboard.KeyCtrlS:
		e.save()
	case keyboard.KeyCtrlQ:
		if e.buf.dirty && !e.buf.quitArmed {
			e.buf.setStatus("Unsaved (Ctrl+Q again)")
			e.buf.quitArmed = true
		} else {
			return false
		}
	default:
		if key >= 32 && key <= 126 {
			e.buf.insertChar(byte(key))
		}
	}
	return true
}

// Run drives the full session, per §4.3.6: load, render, then spin on
// keyboard input dispatching keys until Ctrl+Q confirms exit, clearing
// the screen on the way out.
func (e *Editor) Run() error {
	e.buf.scrollRow = 0
	e.buf.setStatus("")
	e.buf.quitArmed = false

	if err := e.load(); err != nil {
		return err
	}

	e.con.Clear()
	e.render()

	e.running = true
	for e.running {
		if !e.kb.HasData() {
			continue
		}
		key := e.kb.ReadKey()
		if key == keyboard.KeyNone {
			continue
		}
		e.running = e.dispatch(key)
		e.render()
	}

	e.con.Clear()
	return nil
}
