package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not registered under
	// the requested name.
	ErrCodecNotFound = errors.New("codec: not found")

	// ErrAlreadyRegistered is returned when Register is called twice for
	// the same name.
	ErrAlreadyRegistered = errors.New("codec: already registered")
)
