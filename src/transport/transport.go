// Package transport connects the judge to a controller: over stdio, through a child process, or over QUIC.
package transport

import (
	"errors"
	"io"
	"os"
)

// Link is the pair of streams the judge talks over. Out carries state, In carries commands.
type Link struct {
	Out     io.Writer
	In      io.Reader
	closers []func() error
}

func Stdio() *Link {
	return &Link{Out: os.Stdout, In: os.Stdin}
}

// Close releases the link's resources in reverse order of acquisition.
func (l *Link) Close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}

func (l *Link) onClose(fn func() error) {
	l.closers = append(l.closers, fn)
}
