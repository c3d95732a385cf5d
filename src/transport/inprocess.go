package transport

import (
	"errors"
	"io"
)

// InProcess runs a controller in a goroutine, connected to the judge by two pipes.
func InProcess(play func(state io.Reader, commands io.Writer) error) *Link {
	stateR, stateW := io.Pipe()
	cmdR, cmdW := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := play(stateR, cmdW)
		cmdW.CloseWithError(err)
		done <- err
	}()

	l := &Link{Out: stateW, In: cmdR}
	l.onClose(func() error {
		if err := <-done; err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return err
		}
		return nil
	})
	l.onClose(cmdR.Close)
	l.onClose(stateW.Close)
	return l
}
