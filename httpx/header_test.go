package httpx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderLookupIsCaseInsensitive(t *testing.T) {
	h := Header{"accept-encoding": "gzip"}
	require.Equal(t, "gzip", h.Get("ACCEPT-ENCODING"))
	v, ok := h.Lookup("Accept-Encoding")
	require.True(t, ok)
	require.Equal(t, "gzip", v)

	_, err := h.Require("user-agent")
	require.ErrorIs(t, err, ErrMissingHeader)

	var nilHdr Header
	require.Empty(t, nilHdr.Get("x"))
}

func TestFields(t *testing.T) {
	var f Fields
	f.Set("Content-Type", "text/plain")
	f.Set("Content-Length", "3")
	f.Add("X-Multi", "a")
	f.Add("x-multi", "b")
	f.Set("CONTENT-LENGTH", "7")
	require.Equal(t, Fields{
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "Content-Length", Value: "7"},
		{Name: "X-Multi", Value: "a"},
		{Name: "x-multi", Value: "b"},
	}, f)
	require.Equal(t, "a", f.Get("x-multi"))

	f.Del("X-MULTI")
	require.Equal(t, Fields{{Name: "Content-Type", Value: "text/plain"}, {Name: "Content-Length", Value: "7"}}, f)
	require.Empty(t, f.Get("X-Multi"))
}

func TestStatusForError(t *testing.T) {
	cases := map[error]int{
		ErrMalformedRequestLine: StatusBadRequest,
		ErrMalformedHeader:      StatusBadRequest,
		ErrBadContentLength:     StatusBadRequest,
		ErrShortBody:            StatusBadRequest,
		ErrHandlerPanic:         StatusInternalServerError,
		ErrInvalidPath:          StatusBadRequest,
		ErrFileNotFound:         StatusNotFound,
		ErrBodyTooLarge:         StatusContentTooLarge,
		ErrHeaderTooLarge:       StatusContentTooLarge,
		ErrFileWrite:            StatusInternalServerError,
		ErrUnknownStatus:        StatusInternalServerError,
	}
	for err, want := range cases {
		require.Equal(t, want, statusForError(err), err.Error())
	}
}
