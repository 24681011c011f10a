package request

import (
	"bytes"
	"encoding/json"

	"github.com/kailas-cloud/textdex/internal/domain"
)

// Search size limits.
const (
	DefaultSize = 10
	MaxSize     = 10000
)

// Request is a validated search request: the raw query body plus the page size.
type Request struct {
	body json.RawMessage
	size int
}

type envelope struct {
	Size *int `json:"size"`
}

// New validates a search request. sizeParam (the size URL parameter) wins over
// a "size" member of the body; with neither, DefaultSize applies.
func New(body json.RawMessage, sizeParam *int) (Request, error) {
	body = bytes.TrimSpace(body)
	size := DefaultSize

	if len(body) > 0 {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return Request{}, domain.NewParseError("", "malformed request body: %v", err)
		}
		if env.Size != nil {
			size = *env.Size
		}
	}
	if sizeParam != nil {
		size = *sizeParam
	}
	if size < 0 {
		return Request{}, domain.NewQueryError("size", "must not be negative, got %d", size)
	}
	if size > MaxSize {
		return Request{}, domain.NewQueryError("size", "%d exceeds the maximum of %d", size, MaxSize)
	}

	return Request{body: body, size: size}, nil
}

// Body returns the raw request body.
func (r Request) Body() json.RawMessage { return r.body }

// Size returns the maximum number of hits to return.
func (r Request) Size() int { return r.size }
