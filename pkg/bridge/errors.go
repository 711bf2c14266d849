package bridge

import "errors"

var (
	// ErrUnknownParameter is returned by Parameters.Apply for an id that is not
	// registered. The bridge logs it and skips the message.
	ErrUnknownParameter = errors.New("bridge: unknown parameter")

	// ErrNoParameters is returned by New when Config.Parameters is nil.
	ErrNoParameters = errors.New("bridge: no parameters configured")

	// ErrNoTransport is returned by New when Config.Transport is nil.
	ErrNoTransport = errors.New("bridge: no transport configured")
)
