// Package editor implements a line-wrapped text editor over a filesystem
// volume, per §4.3: load, navigate, insert/delete, save, quit, rendering
// continuously to a fixed console grid with the bottom row reserved for
// status.
package editor

// maxSize is the editor's in-memory buffer cap, per §4.3.1 and the
// specification's Open Question 3 (16 KiB, fail-closed on load).
const maxSize = 16 * 1024

// Buffer holds one editing session's text and cursor state. It never
// touches the console or the filesystem directly — Editor wires those in.
type Buffer struct {
	data      []byte
	cursor    int
	scrollRow uint32
	dirty     bool
	quitArmed bool
	filename  string
	statusMsg string
}

// newBuffer returns an empty buffer for filename.
func newBuffer(filename string) *Buffer {
	return &Buffer{filename: filename, data: make([]byte, 0, 256)}
}

// Len returns the current text length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the buffer's current contents. The caller must not modify
// the returned slice.
func (b *Buffer) Bytes() []byte { return b.data }

// Dirty reports whether the buffer has unsaved edits.
func (b *Buffer) Dirty() bool { return b.dirty }

// Cursor returns the current byte offset of the cursor.
func (b *Buffer) Cursor() int { return b.cursor }

// Status returns the transient status message last set.
func (b *Buffer) Status() string { return b.statusMsg }

func (b *Buffer) setStatus(msg string) { b.statusMsg = msg }

// load replaces the buffer's contents with data and resets edit state, as
// editor_load does on a successful read.
func (b *Buffer) load(data []byte) {
	b.data = append(b.data[:0], data...)
	b.cursor = 0
	b.dirty = false
	b.quitArmed = false
	b.setStatus("")
}

// reset clears the buffer for a fresh, never-saved file, as editor_load
// does when the filesystem reports "Not found".
func (b *Buffer) reset() {
	b.data = b.data[:0]
	b.cursor = 0
	b.dirty = false
	b.quitArmed = false
	b.setStatus("New file")
}

// insertChar inserts c at the cursor, per §4.3.4: any mutation clears the
// quit-confirmation flag and sets dirty; overflow reports "Buffer full"
// and changes nothing.
func (b *Buffer) insertChar(c byte) {
	if len(b.data)+1 >= maxSize {
		b.setStatus("Buffer full")
		return
	}

	b.data = append(b.data, 0)
	copy(b.data[b.cursor+1:], b.data[b.cursor:len(b.data)-1])
	b.data[b.cursor] = c
	b.cursor++
	b.dirty = true
	b.quitArmed = false
}

// backspace deletes the byte before the cursor, if any, per §4.3.4.
func (b *Buffer) backspace() {
	if b.cursor == 0 {
		return
	}
	copy(b.data[b.cursor-1:], b.data[b.cursor:])
	b.data = b.data[:len(b.data)-1]
	b.cursor--
	b.dirty = true
	b.quitArmed = false
}

func (b *Buffer) moveLeft() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *Buffer) moveRight() {
	if b.cursor < len(b.data) {
		b.cursor++
	}
}

// moveUp moves the cursor to the same visual column one row up, per
// §4.3.4 and editor_move_up; a no-op at row 0.
func (b *Buffer) moveUp(width int) {
	row, col := visualOf(b.data, b.cursor, width)
	if row == 0 {
		return
	}
	b.cursor = indexOf(b.data, row-1, col, width)
}

// moveDown moves the cursor to the same visual column one row down, per
// §4.3.4 and editor_move_down. indexOf clamps to the buffer length when
// the target row doesn't exist, matching the original's "column clamp".
func (b *Buffer) moveDown(width int) {
	row, col := visualOf(b.data, b.cursor, width)
	b.cursor = indexOf(b.data, row+1, col, width)
}
