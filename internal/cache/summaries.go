// Package cache persists the slug→summary mapping consumed by the site generator.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// Summaries is a slug→summary mapping that remembers insertion order.
// Entries whose value is not a string are not summaries; they are kept verbatim
// in other so a save writes them back unchanged.
type Summaries struct {
	keys   []string
	values map[string]string
	other  map[string]json.RawMessage
}

// New returns an empty mapping.
func New() *Summaries {
	return &Summaries{
		values: make(map[string]string),
		other:  make(map[string]json.RawMessage),
	}
}

func (s *Summaries) exists(slug string) bool {
	if _, ok := s.values[slug]; ok {
		return true
	}
	_, ok := s.other[slug]
	return ok
}

// Get returns the stored summary for slug.
func (s *Summaries) Get(slug string) (string, bool) {
	v, ok := s.values[slug]
	return v, ok
}

// Has reports whether slug has a non-empty summary.
func (s *Summaries) Has(slug string) bool {
	return s.values[slug] != ""
}

// Set stores a summary. New slugs are appended; existing slugs keep their position.
func (s *Summaries) Set(slug, summary string) {
	if !s.exists(slug) {
		s.keys = append(s.keys, slug)
	}
	delete(s.other, slug)
	s.values[slug] = summary
}

func (s *Summaries) setRaw(slug string, raw json.RawMessage) {
	if !s.exists(slug) {
		s.keys = append(s.keys, slug)
	}
	delete(s.values, slug)
	s.other[slug] = raw
}

// Len returns the number of entries.
func (s *Summaries) Len() int {
	return len(s.keys)
}

// Keys returns the slugs in insertion order.
func (s *Summaries) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order without HTML escaping.
func (s *Summaries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if raw, ok := s.other[k]; ok {
			buf.Write(raw)
			continue
		}
		if err := writeString(&buf, s.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Null reads as an empty
// summary; any other non-string value is carried through untouched and does not
// count as a summary. A repeated key keeps its first position and its last value.
func (s *Summaries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("summaries must be a JSON object, got %v", tok)
	}

	out := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("summary for %q: %w", key, err)
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			slog.Warn("Cached value is not a string, keeping it but not as a summary", "slug", key)
			out.setRaw(key, raw)
			continue
		}
		out.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after summaries object")
	}

	*s = *out
	return nil
}

func writeString(buf *bytes.Buffer, v string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
