package http1

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrUnknownStatus   = errors.New("http1: unknown status code")
	ErrMalformedStatus = errors.New("http1: malformed status line")
)

// Field is one response header line. Order of a []Field is the wire order.
type Field struct {
	Name  string
	Value string
}

// StatusText returns the reason phrase for the codes this server emits,
// or "" for any other code.
func StatusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 413:
		return "Content Too Large"
	case 500:
		return "Internal Server Error"
	default:
		return ""
	}
}

// AppendResponse appends a complete response to dst: status line, header
// lines, blank line, body. A nil body means "no body": Content-Type and
// Content-Length are dropped. Otherwise Content-Length always reflects
// len(body), replacing any declared value in place or being appended last.
func AppendResponse(dst []byte, proto string, status int, hdr []Field, body []byte) ([]byte, error) {
	reason := StatusText(status)
	if reason == "" {
		return dst, fmt.Errorf("%w: %d", ErrUnknownStatus, status)
	}
	if proto == "" {
		proto = "HTTP/1.1"
	}
	dst = append(dst, proto...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(status), 10)
	dst = append(dst, ' ')
	dst = append(dst, reason...)
	dst = append(dst, crlf...)

	hasBody := body != nil
	wroteLen := false
	for _, f := range hdr {
		name := SanitizeHeaderKey(f.Name)
		if name == "" {
			continue
		}
		value := f.Value
		switch {
		case strings.EqualFold(name, "Content-Length"):
			if !hasBody || wroteLen {
				continue
			}
			value = strconv.Itoa(len(body))
			wroteLen = true
		case strings.EqualFold(name, "Content-Type"):
			if !hasBody {
				continue
			}
		}
		dst = appendField(dst, name, value)
	}
	if hasBody && !wroteLen {
		dst = appendField(dst, "Content-Length", strconv.Itoa(len(body)))
	}
	dst = append(dst, crlf...)
	dst = append(dst, body...)
	return dst, nil
}

func appendField(dst []byte, name, value string) []byte {
	dst = append(dst, name...)
	dst = append(dst, headerSep...)
	dst = append(dst, SanitizeHeaderValue(value)...)
	return append(dst, crlf...)
}

// WriteResponse frames the response into one buffer and writes it with a
// single call to w.
func WriteResponse(w io.Writer, proto string, status int, hdr []Field, body []byte) error {
	buf, err := AppendResponse(make([]byte, 0, 128+len(body)), proto, status, hdr, body)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ParseStatusLine splits "HTTP/1.1 200 OK" into its parts. A trailing CRLF
// is ignored.
func ParseStatusLine(line string) (proto string, code int, reason string, err error) {
	line = strings.TrimSuffix(line, crlf)
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "HTTP/") || len(parts[1]) != 3 {
		return "", 0, "", fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	code, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	return parts[0], code, parts[2], nil
}
