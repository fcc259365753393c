package httpx

import (
	"errors"
	"strings"

	"dqx0.com/go/tinyhttp/internal/obs"
)

const (
	echoPrefix  = "/echo/"
	filesPrefix = "/files/"
)

type routes struct {
	store FileStore
	log   obs.Logger
}

// NewRouter returns the server's fixed route table:
//
//	/              200, empty
//	/echo/{text}   200 text/plain {text}
//	/user-agent    200 text/plain User-Agent header
//	/files/{name}  GET: 200 file bytes or 404; POST: write body, 201
//
// The /files/ rule is only registered when store is non-nil.
func NewRouter(store FileStore, log obs.Logger) *Router {
	if log == nil {
		log = obs.NopLogger{}
	}
	rs := &routes{store: store, log: log}
	rt := &Router{}
	rt.HandleFunc("/", rs.root)
	rt.HandlePrefixFunc(echoPrefix, rs.echo)
	rt.HandleFunc("/user-agent", rs.userAgent)
	if store != nil {
		rt.HandlePrefixFunc(filesPrefix, rs.files)
	}
	return rt
}

func (rs *routes) root(*Request) (*Outcome, error) {
	return Empty(StatusOK), nil
}

func (rs *routes) echo(r *Request) (*Outcome, error) {
	return Content("text/plain", []byte(strings.TrimPrefix(r.Target, echoPrefix))), nil
}

func (rs *routes) userAgent(r *Request) (*Outcome, error) {
	ua, err := r.Header.Require("User-Agent")
	if err != nil {
		rs.log.Logf(obs.Debug, "req=%s %v; answering with empty body", r.RequestID, err)
	}
	return Content("text/plain", []byte(ua)), nil
}

func (rs *routes) files(r *Request) (*Outcome, error) {
	name := strings.TrimPrefix(r.Target, filesPrefix)
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if r.Method == "POST" {
		if err := rs.store.Write(name, r.Body); err != nil {
			return nil, err
		}
		rs.log.Logf(obs.Debug, "req=%s wrote %d bytes to %q", r.RequestID, len(r.Body), name)
		return Empty(StatusCreated), nil
	}

	rs.log.Logf(obs.Debug, "req=%s finding requested file %q", r.RequestID, name)
	if !rs.store.Exists(name) {
		rs.log.Logf(obs.Debug, "req=%s file not found: %q", r.RequestID, name)
		return Empty(StatusNotFound), nil
	}
	data, err := rs.store.Read(name)
	if errors.Is(err, ErrFileNotFound) {
		// removed between Exists and Read
		return Empty(StatusNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	return Content("application/octet-stream", data), nil
}
