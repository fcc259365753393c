// Package httpx is a minimal HTTP/1.1 file and echo server built directly
// on net.Conn, without net/http.
//
// Each accepted connection carries exactly one request: the request is read
// and parsed by hand, dispatched through a Router of exact and prefix
// rules, optionally gzip-encoded, serialized into a single framed buffer,
// and the connection is closed.
//
// Routes (see NewRouter):
//   - GET /                 200, no body
//   - GET /echo/{text}      200 text/plain {text}
//   - GET /user-agent       200 text/plain, the User-Agent header
//   - GET /files/{name}     200 application/octet-stream, or 404
//   - POST /files/{name}    201 after storing the request body
//
// Quick start:
//
//	store, err := httpx.NewDirStore("/tmp/data")
//	if err != nil { log.Fatal(err) }
//	s := &httpx.Server{Addr: ":4221", Handler: httpx.NewRouter(store, nil)}
//	if err := s.ListenAndServe(); err != nil { log.Fatal(err) }
//
// Gzip is applied when the request's Accept-Encoding admits it; the
// declared Content-Length always matches the bytes on the wire.
package httpx
