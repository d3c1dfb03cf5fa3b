package docbuild

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jrsteele09/go-docbuild/transport"
)

// ReturnType selects how a response body is handed back.
type ReturnType int

const (
	// ReturnJSON buffers the body and checks it is JSON.
	ReturnJSON ReturnType = iota
	// ReturnString buffers the body as-is.
	ReturnString
	// ReturnStream leaves the body unread; the caller must close it.
	ReturnStream
)

func (r ReturnType) String() string {
	switch r {
	case ReturnJSON:
		return "json"
	case ReturnString:
		return "string"
	case ReturnStream:
		return "stream"
	default:
		return fmt.Sprintf("ReturnType(%d)", int(r))
	}
}

// Body is the result of a successful call. Which accessor applies depends
// on Type: Decode and JSON for ReturnJSON, String for ReturnJSON and
// ReturnString, Stream for ReturnStream.
type Body struct {
	Type       ReturnType
	StatusCode int

	raw    []byte
	stream io.ReadCloser
}

func decodeBody(rt ReturnType, resp *transport.Response) (*Body, error) {
	b := &Body{Type: rt, StatusCode: resp.StatusCode}
	switch rt {
	case ReturnStream:
		b.stream = resp.Stream
		if b.stream == nil {
			b.stream = io.NopCloser(bytes.NewReader(resp.Body))
		}
	case ReturnJSON:
		raw := bytes.TrimSpace(resp.Body)
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, fmt.Errorf("%w: status %d: %.64q", ErrMalformedResponse, resp.StatusCode, raw)
		}
		b.raw = raw
	default:
		b.raw = resp.Body
	}
	return b, nil
}

// Decode unmarshals a JSON body into v. An empty body leaves v untouched.
func (b *Body) Decode(v any) error {
	if b.Type != ReturnJSON {
		return fmt.Errorf("docbuild: Decode on %s body", b.Type)
	}
	if len(b.raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// JSON returns the raw JSON body.
func (b *Body) JSON() json.RawMessage {
	return b.raw
}

func (b *Body) String() string {
	return string(b.raw)
}

// Stream returns the unread response body for ReturnStream, nil otherwise.
func (b *Body) Stream() io.ReadCloser {
	return b.stream
}
