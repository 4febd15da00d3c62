package keyboard

import (
	"bufio"
	"io"
)

// Stdin adapts a byte stream (ordinarily the process's raw-mode stdin) to
// the Keyboard contract, translating the editor's escape-sequence
// convention for the arrow keys into the extended KeyUp..KeyRight codes.
// It relies entirely on the caller having already put the terminal into
// raw, unbuffered mode — this type does no termios work itself.
type Stdin struct {
	r *bufio.Reader
}

// NewStdin wraps r. r should already be byte-at-a-time (raw mode); this
// adapter reads through a 16-byte buffer.
func NewStdin(r io.Reader) *Stdin {
	return &Stdin{r: bufio.NewReaderSize(r, 16)}
}

func (s *Stdin) HasData() bool {
	_, err := s.r.Peek(1)
	return err == nil
}

func (s *Stdin) ReadKey() int {
	b, err := s.r.ReadByte()
	if err != nil {
		return KeyNone
	}

	if b != 0x1b {
		return int(b)
	}

	// ESC [ A/B/C/D — arrow keys.
	b2, err := s.r.ReadByte()
	if err != nil || b2 != '[' {
		return KeyNone
	}
	b3, err := s.r.ReadByte()
	if err != nil {
		return KeyNone
	}
	switch b3 {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	default:
		return KeyNone
	}
}
