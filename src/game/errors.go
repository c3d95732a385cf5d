package game

import "errors"

var (
	ErrDuplicateCommand = errors.New("elevator commanded twice")
	ErrUnknownElevator  = errors.New("unknown elevator")
	ErrMissingCommand   = errors.New("elevator left without command")
	ErrInvalidCommand   = errors.New("invalid command")
	ErrCrash            = errors.New("elevator left the building")
	ErrUnanswered       = errors.New("call never answered")
)
