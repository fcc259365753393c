package httpx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"dqx0.com/go/tinyhttp/httpx/internal/http1"
	"dqx0.com/go/tinyhttp/internal/obs"
)

const (
	defaultAddr           = "0.0.0.0:4221"
	defaultMaxHeaderBytes = 8 << 10
	defaultMaxBodyBytes   = 10 << 20

	// after a 413 the unread body is discarded up to this many bytes so
	// the peer sees the response instead of a reset
	maxDrainBytes = 256 << 10
	drainTimeout  = time.Second
)

// Server answers exactly one request per accepted connection and then
// closes it. Connections are served concurrently and share nothing but
// the Handler.
type Server struct {
	Addr    string
	Handler Handler
	// ReadTimeout bounds reading the whole request; WriteTimeout bounds
	// writing the response. Zero means no deadline.
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxHeaderBytes int
	MaxBodyBytes   int64
	Logger         obs.Logger
	Meter          obs.Meter

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[net.Conn]struct{}
	closed    bool
	wg        sync.WaitGroup
}

func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = defaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until l fails or Shutdown is called, in
// which case it returns ErrServerClosed.
func (s *Server) Serve(l net.Listener) error {
	if !s.trackListener(l, true) {
		l.Close()
		return ErrServerClosed
	}
	defer s.trackListener(l, false)
	defer l.Close()
	s.logf(obs.Info, "listening on %s", l.Addr())
	for {
		c, err := l.Accept()
		if err != nil {
			if s.shuttingDown() {
				return ErrServerClosed
			}
			s.logf(obs.Error, "accept: %v", err)
			return err
		}
		if !s.trackConn(c, true) {
			c.Close()
			return ErrServerClosed
		}
		go s.serveConn(c)
	}
}

// Shutdown stops accepting, then waits for in-flight connections to finish
// or ctx to end. Connections still open when ctx ends are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for l := range s.listeners {
		l.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) trackListener(l net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closed {
			return false
		}
		if s.listeners == nil {
			s.listeners = make(map[net.Listener]struct{})
		}
		s.listeners[l] = struct{}{}
	} else {
		delete(s.listeners, l)
	}
	return true
}

func (s *Server) trackConn(c net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closed {
			return false
		}
		if s.conns == nil {
			s.conns = make(map[net.Conn]struct{})
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
	} else {
		delete(s.conns, c)
		s.wg.Done()
	}
	return true
}

func (s *Server) shuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// connState follows one connection from accept to close.
type connState int

const (
	stateAccepted connState = iota
	stateReading
	stateParsed
	stateRouted
	stateEncoded
	stateWritten
	stateClosed
)

var stateNames = [...]string{"accepted", "reading", "parsed", "routed", "encoded", "written", "closed"}

func (st connState) String() string { return stateNames[st] }

type exchange struct {
	s     *Server
	c     net.Conn
	id    string
	cid   string
	state connState
	start time.Time
}

func (x *exchange) enter(st connState) {
	x.state = st
	x.s.logf(obs.Debug, "req=%s conn=%s state=%s", x.id, x.c.RemoteAddr(), st)
}

func (s *Server) serveConn(c net.Conn) {
	x := &exchange{s: s, c: c, id: newRequestID(), start: time.Now()}
	defer s.trackConn(c, false)
	defer func() {
		c.Close()
		x.enter(stateClosed)
	}()
	x.enter(stateAccepted)

	if s.ReadTimeout > 0 {
		_ = c.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	}
	x.enter(stateReading)
	rr := &http1.Reader{
		BR:             bufio.NewReader(c),
		MaxHeaderBytes: s.headerLimit(),
		MaxBodyBytes:   s.bodyLimit(),
	}
	pr, err := rr.ReadRequest()
	if err != nil {
		var ne net.Error
		switch {
		case errors.Is(err, io.EOF):
			// peer closed without sending anything
			return
		case errors.As(err, &ne) && ne.Timeout():
			s.logf(obs.Warn, "req=%s read timeout from %s", x.id, c.RemoteAddr())
			return
		}
		s.meter().Counter("tinyhttp_parse_errors_total", 1)
		s.logf(obs.Warn, "req=%s bad request from %s: %v", x.id, c.RemoteAddr(), err)
		x.respond("HTTP/1.1", Empty(statusForError(err)), "-", "-")
		if errors.Is(err, ErrBodyTooLarge) {
			x.drain(rr.BR)
		}
		return
	}
	x.enter(stateParsed)

	r := &Request{
		Method:        pr.Method,
		Target:        pr.Target,
		Proto:         pr.Proto,
		Header:        Header(pr.Header),
		Body:          pr.Body,
		RemoteAddr:    c.RemoteAddr().String(),
		RequestID:     x.id,
		CorrelationID: Header(pr.Header).Get("X-Request-ID"),
	}
	ctx := WithRequestID(context.Background(), r.RequestID)
	if r.CorrelationID != "" {
		ctx = WithCorrelationID(ctx, r.CorrelationID)
	}
	r = WithContext(r, ctx)
	if cid, ok := CorrelationIDFrom(r.Context()); ok {
		x.cid = cid
	}

	out, err := x.route(s.handler(), r)
	if err != nil {
		status := statusForError(err)
		level := obs.Warn
		if status >= 500 {
			level = obs.Error
		}
		s.logf(level, "req=%s %s %s: %v", x.id, r.Method, r.Target, err)
		out = Empty(status)
	}
	if out == nil {
		out = Empty(StatusNotFound)
	}
	x.enter(stateRouted)

	dec, err := Encode(out, r.Header.Get("Accept-Encoding"))
	switch {
	case err != nil:
		s.logf(obs.Error, "req=%s gzip: %v", x.id, err)
		out = Empty(StatusInternalServerError)
	case dec.Required:
		s.meter().Counter("tinyhttp_gzip_responses_total", 1)
		s.logf(obs.Debug, "req=%s gzip body %d bytes", x.id, len(dec.Body))
	}
	x.enter(stateEncoded)

	x.respond(r.Proto, out, r.Method, r.Target)
}

// route runs h, turning a panic into ErrHandlerPanic so that one bad
// request cannot take the process down.
func (x *exchange) route(h Handler, r *Request) (out *Outcome, err error) {
	defer func() {
		if v := recover(); v != nil {
			x.s.meter().Counter("tinyhttp_handler_panics_total", 1)
			x.s.logf(obs.Error, "req=%s panic serving %s %s: %v\n%s", x.id, r.Method, r.Target, v, debug.Stack())
			out, err = nil, fmt.Errorf("%w: %v", ErrHandlerPanic, v)
		}
	}()
	return h.Serve(r)
}

// drain discards what is left of an oversize body, bounded in size and
// time, after the response has been written.
func (x *exchange) drain(br *bufio.Reader) {
	if tc, ok := x.c.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	_ = x.c.SetReadDeadline(time.Now().Add(drainTimeout))
	n, _ := io.CopyN(io.Discard, br, maxDrainBytes)
	x.s.logf(obs.Debug, "req=%s drained %d bytes", x.id, n)
}

// respond writes out in one framed buffer and records the exchange.
func (x *exchange) respond(proto string, out *Outcome, method, target string) {
	s := x.s
	if s.WriteTimeout > 0 {
		_ = x.c.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	err := http1.WriteResponse(x.c, proto, out.Status, out.Header, out.Body)
	if errors.Is(err, http1.ErrUnknownStatus) {
		s.logf(obs.Error, "req=%s handler returned status %d", x.id, out.Status)
		out = Empty(StatusInternalServerError)
		err = http1.WriteResponse(x.c, proto, out.Status, nil, nil)
	}
	if err != nil {
		s.logf(obs.Warn, "req=%s write to %s: %v", x.id, x.c.RemoteAddr(), err)
		return
	}
	x.enter(stateWritten)

	elapsed := time.Since(x.start)
	status := strconv.Itoa(out.Status)
	s.meter().Counter("tinyhttp_requests_total", 1, obs.Label{Key: "status", Value: status})
	s.meter().Histogram("tinyhttp_request_duration_seconds", elapsed.Seconds())
	if x.cid != "" {
		s.logf(obs.Info, "req=%s cid=%s %s %s -> %d (%d bytes, %s)", x.id, x.cid, method, target, out.Status, len(out.Body), elapsed)
		return
	}
	s.logf(obs.Info, "req=%s %s %s -> %d (%d bytes, %s)", x.id, method, target, out.Status, len(out.Body), elapsed)
}

func (s *Server) handler() Handler {
	if s.Handler != nil {
		return s.Handler
	}
	return HandlerFunc(func(*Request) (*Outcome, error) {
		return Empty(StatusNotFound), nil
	})
}

func (s *Server) headerLimit() int {
	if s.MaxHeaderBytes <= 0 {
		return defaultMaxHeaderBytes
	}
	return s.MaxHeaderBytes
}

func (s *Server) bodyLimit() int64 {
	if s.MaxBodyBytes <= 0 {
		return defaultMaxBodyBytes
	}
	return s.MaxBodyBytes
}

func (s *Server) logf(level obs.Level, format string, args ...interface{}) {
	if s.Logger == nil {
		return
	}
	s.Logger.Logf(level, format, args...)
}

func (s *Server) meter() obs.Meter {
	if s.Meter != nil {
		return s.Meter
	}
	return obs.NopMeter{}
}
