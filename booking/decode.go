package booking

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-booking-client/api"
)

// envelope is the {"data": ...} wrapper most endpoints use.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *api.PageMeta   `json:"meta,omitempty"`
}

// paginator is a page object nested inside the envelope:
// {"data": {"data": [...], "current_page": 1, "last_page": 3, ...}}.
type paginator struct {
	Data json.RawMessage `json:"data"`
	api.PageMeta
}

// decodeItem decodes a single object that may or may not be wrapped in an envelope.
func decodeItem[T any](body []byte) (T, error) {
	var out T
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && isObject(env.Data) {
		body = env.Data
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("[booking decodeItem] %w", err)
	}
	return out, nil
}

// decodePage decodes a list endpoint. The list may be the envelope's data
// array or the data array of a paginator nested in the envelope.
func decodePage[T any](body []byte) (api.Page[T], error) {
	var page api.Page[T]
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return page, fmt.Errorf("[booking decodePage] %w", err)
	}

	switch {
	case isArray(env.Data):
		if err := json.Unmarshal(env.Data, &page.Data); err != nil {
			return page, fmt.Errorf("[booking decodePage] %w", err)
		}
		page.Meta = env.Meta
	case isObject(env.Data):
		var p paginator
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return page, fmt.Errorf("[booking decodePage] %w", err)
		}
		if len(p.Data) > 0 && !isNull(p.Data) {
			if err := json.Unmarshal(p.Data, &page.Data); err != nil {
				return page, fmt.Errorf("[booking decodePage] %w", err)
			}
		}
		meta := p.PageMeta
		page.Meta = &meta
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
