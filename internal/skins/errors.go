package skins

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no character directory matches the requested name.
	ErrNotFound = errors.New("character not found")
	// ErrInvalidSkinIndex means the skin index has no key mapping in the
	// character's layout.
	ErrInvalidSkinIndex = errors.New("invalid skin index")
	// ErrMalformedConfig is wrapped by the IOError returned when a
	// configuration file lacks a required property or holds the wrong type.
	ErrMalformedConfig = errors.New("malformed configuration")
)

// IOError reports an archive read, enumeration or decode failure, including
// missing configuration files and malformed configuration.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Outcome is the tagged result of a resolve call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeInvalidSkinIndex
	OutcomeIOError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalidSkinIndex:
		return "invalid_skin_index"
	default:
		return "io_error"
	}
}

// Classify maps an error returned by this package to its Outcome.
// Unknown errors are treated as I/O failures.
func Classify(err error) Outcome {
	var ioErr *IOError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &ioErr):
		return OutcomeIOError
	case errors.Is(err, ErrInvalidSkinIndex):
		return OutcomeInvalidSkinIndex
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeIOError
	}
}
