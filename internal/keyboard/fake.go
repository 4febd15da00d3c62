package keyboard

// Fake is a scripted Keyboard: a queue of key codes drained one per
// ReadKey call. Tests build a key sequence and step the editor through it
// without any real terminal.
type Fake struct {
	queue []int
}

// NewFake returns a Keyboard pre-loaded with keys.
func NewFake(keys ...int) *Fake {
	return &Fake{queue: append([]int(nil), keys...)}
}

// Push appends more keys to the queue, for tests that want to react to
// intermediate state before supplying the next input.
func (f *Fake) Push(keys ...int) {
	f.queue = append(f.queue, keys...)
}

func (f *Fake) HasData() bool { return len(f.queue) > 0 }

func (f *Fake) ReadKey() int {
	if len(f.queue) == 0 {
		return KeyNone
	}
	k := f.queue[0]
	f.queue = f.queue[1:]
	return k
}
