package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
)

const maxBodyBytes = 1 << 20

// errMalformed marks a request body or parameter that could not be decoded.
var errMalformed = errors.New("malformed request")

// malformed wraps errMalformed with the offending field.
func malformed(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", errMalformed, field, err)
}

// RequestBodyParser reads a JSON object or form-encoded body once and
// exposes its fields as strings, numbers and dates.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body. An empty body parses to no fields.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = malformed("body", p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = malformed("body", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = malformed("body", p.err)
	}
	return p.err
}

// Has reports whether key was present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns the sanitized string value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Float parses key as an amount, accepting a comma decimal separator.
// Missing keys are malformed; values that are not a finite number fail
// validation on key.
func (p *RequestBodyParser) Float(key string) (float64, error) {
	raw := p.Get(key)
	if raw == "" {
		return 0, malformed(key, errors.New("missing"))
	}
	v, err := core.ParseAmount(raw)
	if err != nil {
		return 0, core.Invalid(key, core.ErrInvalidAmount)
	}
	return v, nil
}

// Int parses key as a base-10 integer. Missing keys are malformed.
func (p *RequestBodyParser) Int(key string) (int, error) {
	raw := p.Get(key)
	if raw == "" {
		return 0, malformed(key, errors.New("missing"))
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, malformed(key, fmt.Errorf("not an integer: %q", raw))
	}
	return v, nil
}

// Time parses key as a ledger timestamp or a plain date, in UTC. ok is
// false when the key is absent or empty.
func (p *RequestBodyParser) Time(key string) (t time.Time, ok bool, err error) {
	raw := p.Get(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range []string{core.TimestampLayout, time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, malformed(key, fmt.Errorf("not a date: %q", raw))
}

// IsJSON reports whether the body was a JSON object.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads and parses r, writing a 400 on failure.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return p, true
}
