package httpx

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*Router, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	return NewRouter(store, nil), dir
}

func serve(t *testing.T, rt *Router, r *Request) *Outcome {
	t.Helper()
	out, err := rt.Serve(r)
	require.NoError(t, err)
	return out
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func TestRouter_FirstMatchWins(t *testing.T) {
	rt := &Router{}
	rt.HandlePrefixFunc("/a/", func(*Request) (*Outcome, error) { return Empty(StatusCreated), nil })
	rt.HandleFunc("/a/b", func(*Request) (*Outcome, error) { return Empty(StatusOK), nil })
	require.Equal(t, StatusCreated, serve(t, rt, &Request{Target: "/a/b"}).Status)
	require.Equal(t, StatusNotFound, serve(t, rt, &Request{Target: "/a"}).Status)
}

func TestRoutes_Root(t *testing.T) {
	rt, _ := newTestRouter(t)
	out := serve(t, rt, &Request{Method: "GET", Target: "/"})
	require.Equal(t, StatusOK, out.Status)
	require.False(t, out.HasBody())
	require.Empty(t, out.Header)
}

func TestRoutes_Echo(t *testing.T) {
	rt, _ := newTestRouter(t)
	for _, text := range []string{"abc", "", "héllo", "a/b%20c"} {
		out := serve(t, rt, &Request{Method: "GET", Target: "/echo/" + text})
		require.Equal(t, StatusOK, out.Status)
		require.Equal(t, text, string(out.Body))
		require.Equal(t, "text/plain", out.Header.Get("Content-Type"))
		require.Equal(t, len(text), mustAtoi(t, out.Header.Get("Content-Length")))
	}
	// "/echo" without the slash is not the echo prefix
	require.Equal(t, StatusNotFound, serve(t, rt, &Request{Target: "/echo"}).Status)
}

func TestRoutes_UserAgent(t *testing.T) {
	rt, _ := newTestRouter(t)
	out := serve(t, rt, &Request{Method: "GET", Target: "/user-agent", Header: Header{"user-agent": "foo/1.0"}})
	require.Equal(t, StatusOK, out.Status)
	require.Equal(t, "foo/1.0", string(out.Body))
	require.Equal(t, "7", out.Header.Get("Content-Length"))

	out = serve(t, rt, &Request{Method: "GET", Target: "/user-agent"})
	require.Equal(t, StatusOK, out.Status)
	require.True(t, out.HasBody())
	require.Empty(t, out.Body)
	require.Equal(t, "0", out.Header.Get("Content-Length"))
}

func TestRoutes_FilesPostThenGet(t *testing.T) {
	rt, dir := newTestRouter(t)
	out := serve(t, rt, &Request{Method: "POST", Target: "/files/a.txt", Body: []byte("hello")})
	require.Equal(t, StatusCreated, out.Status)
	require.False(t, out.HasBody())

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	out = serve(t, rt, &Request{Method: "GET", Target: "/files/a.txt"})
	require.Equal(t, StatusOK, out.Status)
	require.Equal(t, "hello", string(out.Body))
	require.Equal(t, "application/octet-stream", out.Header.Get("Content-Type"))
	require.Equal(t, "5", out.Header.Get("Content-Length"))

	// overwrite
	serve(t, rt, &Request{Method: "POST", Target: "/files/a.txt", Body: []byte("hi")})
	out = serve(t, rt, &Request{Method: "GET", Target: "/files/a.txt"})
	require.Equal(t, "hi", string(out.Body))
}

func TestRoutes_FilesMissing(t *testing.T) {
	rt, dir := newTestRouter(t)
	require.Equal(t, StatusNotFound, serve(t, rt, &Request{Method: "GET", Target: "/files/missing.txt"}).Status)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.Equal(t, StatusNotFound, serve(t, rt, &Request{Method: "GET", Target: "/files/sub"}).Status)
}

func TestRoutes_FilesRejectsTraversal(t *testing.T) {
	rt, _ := newTestRouter(t)
	for _, target := range []string{"/files/../secret", "/files/a/../../b", "/files/", "/files//etc/passwd"} {
		_, err := rt.Serve(&Request{Method: "GET", Target: target})
		require.ErrorIs(t, err, ErrInvalidPath, target)
		_, err = rt.Serve(&Request{Method: "POST", Target: target, Body: []byte("x")})
		require.ErrorIs(t, err, ErrInvalidPath, target)
	}
}

func TestRoutes_FilesWriteFailure(t *testing.T) {
	rt, _ := newTestRouter(t)
	_, err := rt.Serve(&Request{Method: "POST", Target: "/files/no-such-dir/a.txt", Body: []byte("x")})
	require.ErrorIs(t, err, ErrFileWrite)
	require.Equal(t, StatusInternalServerError, statusForError(err))
}

func TestRoutes_NoStoreMeansNoFiles(t *testing.T) {
	rt := NewRouter(nil, nil)
	require.Equal(t, StatusNotFound, serve(t, rt, &Request{Method: "POST", Target: "/files/a.txt"}).Status)
}

func TestRoutes_UnknownTargets(t *testing.T) {
	rt, _ := newTestRouter(t)
	for _, target := range []string{"/abc", "/user-agent/x", "/files", "/Echo/abc", "//"} {
		out := serve(t, rt, &Request{Method: "GET", Target: target})
		require.Equal(t, StatusNotFound, out.Status, target)
		require.False(t, out.HasBody(), target)
	}
}
