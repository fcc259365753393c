package httpx

import (
	"errors"

	"dqx0.com/go/tinyhttp/httpx/internal/http1"
)

var (
	ErrMissingHeader = errors.New("httpx: missing header")
	ErrFileNotFound  = errors.New("httpx: file not found")
	ErrFileWrite     = errors.New("httpx: file write failed")
	ErrInvalidPath   = errors.New("httpx: invalid file path")
	ErrServerClosed  = errors.New("httpx: server closed")
	ErrHandlerPanic  = errors.New("httpx: handler panicked")
)

// Wire-level errors surfaced by the request parser and serializer.
var (
	ErrMalformedRequestLine = http1.ErrMalformedRequestLine
	ErrMalformedHeader      = http1.ErrMalformedHeader
	ErrHeaderTooLarge       = http1.ErrHeaderTooLarge
	ErrBodyTooLarge         = http1.ErrBodyTooLarge
	ErrBadContentLength     = http1.ErrBadContentLength
	ErrShortBody            = http1.ErrShortBody
	ErrUnknownStatus        = http1.ErrUnknownStatus
)

// statusForError maps a parse or route failure to the status of the
// best-effort response sent before closing the connection.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return StatusNotFound
	case errors.Is(err, ErrBodyTooLarge), errors.Is(err, ErrHeaderTooLarge):
		return StatusContentTooLarge
	case errors.Is(err, ErrMalformedRequestLine),
		errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrBadContentLength),
		errors.Is(err, ErrShortBody),
		errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrMissingHeader):
		return StatusBadRequest
	default:
		return StatusInternalServerError
	}
}
