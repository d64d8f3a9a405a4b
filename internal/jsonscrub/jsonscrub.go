package jsonscrub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/scrub/internal/redact"
)

// ErrInvalidJSON is returned when the input is not a single JSON value.
var ErrInvalidJSON = errors.New("invalid JSON document")

type frame struct {
	object    bool
	count     int
	expectKey bool
}

type rewriter struct {
	out    bytes.Buffer
	str    bytes.Buffer
	enc    *json.Encoder
	stack  []frame
	policy redact.Policy
	counts map[string]int
}

// Redact returns data with URLs redacted from every string value, and the
// number of URLs it replaced per scheme.
func Redact(data []byte, p redact.Policy) ([]byte, map[string]int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	rw := &rewriter{policy: p, counts: make(map[string]int)}
	rw.enc = json.NewEncoder(&rw.str)
	rw.enc.SetEscapeHTML(false)

	started := false
	for {
		if started && len(rw.stack) == 0 {
			break
		}
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, fmt.Errorf("%w: unexpected end of input", ErrInvalidJSON)
			}
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		started = true
		if err := rw.token(tok); err != nil {
			return nil, nil, err
		}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidJSON)
	}
	return rw.out.Bytes(), rw.counts, nil
}

func (rw *rewriter) token(tok json.Token) error {
	if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
		rw.stack = rw.stack[:len(rw.stack)-1]
		rw.out.WriteByte(byte(d))
		return nil
	}

	isKey := rw.separate()

	switch v := tok.(type) {
	case json.Delim:
		rw.out.WriteByte(byte(v))
		rw.stack = append(rw.stack, frame{object: v == '{', expectKey: v == '{'})
	case string:
		if isKey {
			return rw.writeString(v)
		}
		out, ms := rw.policy.RedactMatches(v)
		for _, m := range ms {
			rw.counts[m.Scheme.String()]++
		}
		return rw.writeString(out)
	case json.Number:
		rw.out.WriteString(v.String())
	case bool:
		if v {
			rw.out.WriteString("true")
		} else {
			rw.out.WriteString("false")
		}
	case nil:
		rw.out.WriteString("null")
	default:
		return fmt.Errorf("%w: unexpected token %T", ErrInvalidJSON, tok)
	}
	return nil
}

// separate writes the comma or colon due before the next token and reports
// whether that token is an object key.
func (rw *rewriter) separate() bool {
	if len(rw.stack) == 0 {
		return false
	}
	f := &rw.stack[len(rw.stack)-1]
	if f.object && f.expectKey {
		if f.count > 0 {
			rw.out.WriteByte(',')
		}
		f.expectKey = false
		return true
	}
	if f.object {
		rw.out.WriteByte(':')
		f.expectKey = true
		f.count++
		return false
	}
	if f.count > 0 {
		rw.out.WriteByte(',')
	}
	f.count++
	return false
}

func (rw *rewriter) writeString(s string) error {
	rw.str.Reset()
	if err := rw.enc.Encode(s); err != nil {
		return fmt.Errorf("encoding string: %w", err)
	}
	rw.out.Write(bytes.TrimSuffix(rw.str.Bytes(), []byte("\n")))
	return nil
}
