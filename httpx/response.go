package httpx

import "strconv"

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusContentTooLarge     = 413
	StatusInternalServerError = 500
)

// Outcome is what a route produces before encoding and serialization.
// A nil Body means the response carries no body at all; a non-nil empty
// Body is a zero-length body with Content-Length: 0.
type Outcome struct {
	Status int
	Header Fields
	Body   []byte
}

func (o *Outcome) HasBody() bool { return o != nil && o.Body != nil }

// Empty returns an outcome with status and neither headers nor body.
func Empty(status int) *Outcome {
	return &Outcome{Status: status}
}

// Content returns a 200 outcome carrying body typed as contentType.
func Content(contentType string, body []byte) *Outcome {
	if body == nil {
		body = []byte{}
	}
	o := &Outcome{Status: StatusOK, Body: body}
	o.Header.Set("Content-Type", contentType)
	o.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return o
}
