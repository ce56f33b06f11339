package audio

import (
	"context"
	"os"

	"golang.org/x/term"
)

// KeyPress returns a channel that is closed when a key is pressed on stdin,
// and a restore function that must be called before exiting. When stdin is
// not a terminal the channel never fires and restore is a no-op.
//
// The reading goroutine stays blocked on stdin until the next key; it holds
// no resources besides that.
func KeyPress(ctx context.Context) (<-chan struct{}, func()) {
	pressed := make(chan struct{})

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return pressed, func() {}
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return pressed, func() {}
	}

	go func() {
		buf := make([]byte, 1)
		if n, _ := os.Stdin.Read(buf); n > 0 {
			select {
			case <-ctx.Done():
			default:
				close(pressed)
			}
		}
	}()

	return pressed, func() { _ = term.Restore(fd, old) }
}
