package http1

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrMalformedRequestLine = errors.New("http1: malformed request line")
	ErrMalformedHeader      = errors.New("http1: malformed header")
	ErrHeaderTooLarge       = errors.New("http1: header too large")
	ErrBodyTooLarge         = errors.New("http1: body too large")
	ErrBadContentLength     = errors.New("http1: invalid Content-Length")
	ErrShortBody            = errors.New("http1: body shorter than Content-Length")
)

const (
	crlf      = "\r\n"
	headerEnd = "\r\n\r\n"
	headerSep = ": "
)

// ParsedRequest is a minimal representation parsed from the wire.
// Header keys are lower-case; when a name repeats, the last value wins.
type ParsedRequest struct {
	Method string
	Target string
	Proto  string
	Header map[string]string
	Body   []byte
}

// Parse turns one buffered request into a ParsedRequest. Everything after
// the first blank line is the body; without a blank line the body is empty.
func Parse(raw []byte) (*ParsedRequest, error) {
	head, body := raw, []byte(nil)
	if i := bytes.Index(raw, []byte(headerEnd)); i >= 0 {
		head, body = raw[:i], raw[i+len(headerEnd):]
	}
	lines := strings.Split(string(head), crlf)
	method, target, proto, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}
	hdr := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			// trailing CRLF of a head that was cut before the blank line
			continue
		}
		k, v, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		hdr[k] = v
	}
	if body == nil {
		body = []byte{}
	}
	return &ParsedRequest{
		Method: method,
		Target: target,
		Proto:  proto,
		Header: hdr,
		Body:   body,
	}, nil
}

func parseRequestLine(line string) (method, target, proto string, err error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}
	method, target, proto = parts[0], parts[1], parts[2]
	if SanitizeHeaderKey(method) == "" || !strings.HasPrefix(target, "/") || !strings.HasPrefix(proto, "HTTP/") {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}
	return method, target, proto, nil
}

func parseHeaderLine(line string) (string, string, error) {
	i := strings.Index(line, headerSep)
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	k := SanitizeHeaderKey(line[:i])
	if k == "" {
		return "", "", fmt.Errorf("%w: invalid name %q", ErrMalformedHeader, line[:i])
	}
	return strings.ToLower(k), strings.TrimSpace(line[i+len(headerSep):]), nil
}

// Reader reads one request from a connection. The head is read up to the
// blank line and the body is bounded by Content-Length.
type Reader struct {
	BR             *bufio.Reader
	MaxHeaderBytes int
	MaxBodyBytes   int64
}

func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	head, err := r.readHead()
	if err != nil {
		return nil, err
	}
	pr, err := Parse(head)
	if err != nil {
		return nil, err
	}
	n, err := contentLength(pr.Header)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return pr, nil
	}
	if r.MaxBodyBytes > 0 && n > r.MaxBodyBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, n, r.MaxBodyBytes)
	}
	body := make([]byte, n)
	if got, err := io.ReadFull(r.BR, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: read %d of %d bytes", ErrShortBody, got, n)
		}
		return nil, fmt.Errorf("http1: reading body: %w", err)
	}
	pr.Body = body
	return pr, nil
}

// readHead returns the request line and header lines including the
// terminating blank line. If the peer stops sending before the blank line
// the bytes read so far are returned.
func (r *Reader) readHead() ([]byte, error) {
	var buf []byte
	for {
		line, err := r.BR.ReadSlice('\n')
		buf = append(buf, line...)
		if r.MaxHeaderBytes > 0 && len(buf) > r.MaxHeaderBytes {
			return nil, ErrHeaderTooLarge
		}
		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF && len(buf) > 0:
			return buf, nil
		case err != nil:
			return nil, err
		}
		if string(buf) == crlf {
			// tolerate an empty line ahead of the request line
			buf = buf[:0]
			continue
		}
		if bytes.HasSuffix(buf, []byte(headerEnd)) {
			return buf, nil
		}
	}
}

func contentLength(h map[string]string) (int64, error) {
	v, ok := h["content-length"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadContentLength, v)
	}
	return n, nil
}
