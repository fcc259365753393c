package httpx

import (
	"bytes"
	"compress/gzip"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func gunzip(t *testing.T, p []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(p))
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(b)
}

func TestAcceptsGzip(t *testing.T) {
	cases := map[string]bool{
		"":                         false,
		"gzip":                     true,
		"GZIP":                     true,
		"deflate, gzip":            true,
		"invalid-1, gzip, invalid": true,
		" x-gzip ":                 true,
		"gzip;q=0":                 false,
		"gzip; q=0.0":              false,
		"gzip;q=0.1":               true,
		"deflate, br":              false,
		"gzipped":                  false,
	}
	for in, want := range cases {
		require.Equal(t, want, AcceptsGzip(in), "%q", in)
	}
}

func TestEncode_ReplacesBodyAndFixesLength(t *testing.T) {
	o := Content("text/plain", []byte("abc"))
	dec, err := Encode(o, "gzip")
	require.NoError(t, err)
	require.True(t, dec.Required)
	require.Equal(t, dec.Body, o.Body)
	require.Equal(t, "abc", gunzip(t, o.Body))
	require.Equal(t, strconv.Itoa(len(o.Body)), o.Header.Get("Content-Length"))
	require.Equal(t, Fields{
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "Content-Length", Value: strconv.Itoa(len(o.Body))},
		{Name: "Content-Encoding", Value: "gzip"},
	}, o.Header)
}

func TestEncode_NoBodyOrNoGzip(t *testing.T) {
	o := Empty(StatusOK)
	dec, err := Encode(o, "gzip")
	require.NoError(t, err)
	require.False(t, dec.Required)
	require.Nil(t, o.Body)
	require.Empty(t, o.Header)

	o = Content("text/plain", []byte("abc"))
	dec, err = Encode(o, "deflate")
	require.NoError(t, err)
	require.False(t, dec.Required)
	require.Equal(t, "abc", string(o.Body))
	require.Empty(t, o.Header.Get("Content-Encoding"))
}

func TestEncode_PooledWritersDoNotLeak(t *testing.T) {
	for _, s := range []string{"first body", "second", ""} {
		o := Content("text/plain", []byte(s))
		_, err := Encode(o, "gzip")
		require.NoError(t, err)
		require.Equal(t, s, gunzip(t, o.Body))
	}
}
