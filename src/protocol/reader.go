// Package protocol reads the controller's whitespace separated tokens with a deadline on every read.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"elevjudge/src/timer"
)

var (
	ErrReadTimeout = errors.New("read timed out")
	ErrMalformed   = errors.New("malformed token")
	ErrInputClosed = errors.New("input closed")
)

// Result tells what a bounded read produced.
type Result int

const (
	Value Result = iota
	Malformed
	TimedOut
	Closed
)

func (r Result) Err() error {
	switch r {
	case Malformed:
		return ErrMalformed
	case TimedOut:
		return ErrReadTimeout
	case Closed:
		return ErrInputClosed
	}
	return nil
}

// Reader hands out tokens scanned from an input stream by a single background goroutine.
type Reader struct {
	tokens   chan string
	done     chan struct{}
	deadline *timer.Deadline
}

func NewReader(r io.Reader, timeout time.Duration) *Reader {
	rd := &Reader{
		tokens:   make(chan string, 64),
		done:     make(chan struct{}),
		deadline: timer.NewDeadline(timeout),
	}
	go rd.scan(r)
	return rd
}

func (rd *Reader) scan(r io.Reader) {
	defer close(rd.tokens)
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		select {
		case rd.tokens <- scanner.Text():
		case <-rd.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Debug("Input scanner stopped", "err", err)
	}
}

// Token blocks until a token arrives, the input closes, or the deadline expires.
func (rd *Reader) Token() (string, Result) {
	expired := rd.deadline.Start()
	defer rd.deadline.Stop()

	select {
	case tok, ok := <-rd.tokens:
		if !ok {
			return "", Closed
		}
		return tok, Value
	case <-expired:
		slog.Debug("Read timed out", "after", rd.deadline.Duration())
		return "", TimedOut
	}
}

// Int reads one token and parses it as a decimal integer.
func (rd *Reader) Int() (int, Result) {
	tok, res := rd.Token()
	if res != Value {
		return 0, res
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, Malformed
	}
	return v, Value
}

// ReadToken is Token with the outcome folded into an error.
func (rd *Reader) ReadToken(what string) (string, error) {
	tok, res := rd.Token()
	if err := res.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", what, err)
	}
	return tok, nil
}

func (rd *Reader) ReadInt(what string) (int, error) {
	v, res := rd.Int()
	if err := res.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

// Close stops the background scanner once it next delivers a token.
func (rd *Reader) Close() {
	select {
	case <-rd.done:
	default:
		close(rd.done)
	}
}
