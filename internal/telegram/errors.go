package telegram

import "github.com/juju/errors"

// Decode errors are local to one telegram. Callers compare errors.Cause(err) with these.
var (
	ErrMalformedFrame                = errors.New("telegram: malformed frame")
	ErrPayloadSizeMismatch           = errors.New("telegram: payload size mismatch")
	ErrInvalidSignalQuality          = errors.New("telegram: invalid signal quality")
	ErrUnknownPacketType             = errors.New("telegram: unknown packet type")
	ErrInvalidCommandCode            = errors.New("telegram: invalid command code")
	ErrUnknownCommand                = errors.New("telegram: unknown command")
	ErrUnsupportedPayload            = errors.New("telegram: unsupported payload")
	ErrPayloadLengthNotMultipleOfSix = errors.New("telegram: payload length not multiple of 6")
	ErrInvalidHexDigit               = errors.New("telegram: invalid hex digit")
)

var decodeErrors = []error{
	ErrMalformedFrame,
	ErrPayloadSizeMismatch,
	ErrInvalidSignalQuality,
	ErrUnknownPacketType,
	ErrInvalidCommandCode,
	ErrUnknownCommand,
	ErrUnsupportedPayload,
	ErrPayloadLengthNotMultipleOfSix,
	ErrInvalidHexDigit,
}

// IsDecodeError reports whether err originates from telegram decoding.
func IsDecodeError(err error) bool {
	cause := errors.Cause(err)
	for _, e := range decodeErrors {
		if cause == e {
			return true
		}
	}
	return false
}
