package httpx

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

var idSeq atomic.Uint64

// newRequestID returns 16 hex characters identifying one exchange in logs.
func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	// rand failing is unlikely; fall back to time plus a sequence number
	return strconv.FormatInt(time.Now().UnixNano(), 16) + "-" + strconv.FormatUint(idSeq.Add(1), 16)
}
