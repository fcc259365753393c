package httpx

import (
	"bytes"
	"compress/gzip"
	"strconv"
	"strings"
	"sync"
)

// EncodingDecision reports whether a body was gzip-encoded and, if so,
// the encoded bytes.
type EncodingDecision struct {
	Required bool
	Body     []byte
}

var gzipWriters = sync.Pool{
	New: func() interface{} { return gzip.NewWriter(nil) },
}

// AcceptsGzip reports whether an Accept-Encoding value admits gzip. The
// value is split on commas; "gzip" and "x-gzip" match case-insensitively
// unless qualified with q=0.
func AcceptsGzip(acceptEncoding string) bool {
	for _, tok := range strings.Split(acceptEncoding, ",") {
		coding, params, _ := strings.Cut(tok, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "x-gzip" {
			continue
		}
		return !zeroQuality(params)
	}
	return false
}

func zeroQuality(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && q == 0
	}
	return false
}

// Encode gzips o's body when acceptEncoding admits gzip and o has a body.
// On encoding, o.Body is replaced, Content-Encoding: gzip is added and
// Content-Length is set to the compressed length.
func Encode(o *Outcome, acceptEncoding string) (EncodingDecision, error) {
	if !o.HasBody() || !AcceptsGzip(acceptEncoding) {
		return EncodingDecision{}, nil
	}
	zb, err := gzipBytes(o.Body)
	if err != nil {
		return EncodingDecision{}, err
	}
	o.Body = zb
	o.Header.Set("Content-Encoding", "gzip")
	o.Header.Set("Content-Length", strconv.Itoa(len(zb)))
	return EncodingDecision{Required: true, Body: zb}, nil
}

func gzipBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzipWriters.Get().(*gzip.Writer)
	defer gzipWriters.Put(zw)
	zw.Reset(&buf)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
