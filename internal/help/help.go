// Package help defines the help document served by the help content service
// and rendered by the help panel.
package help

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Section is a titled group of help items. ID is only used as a render key.
type Section struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Response is the full help document returned by GET /api/help.
type Response struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Normalize replaces nil collections with empty ones so the document
// serializes as [] rather than null.
func (r *Response) Normalize() {
	if r.Sections == nil {
		r.Sections = []Section{}
	}
	for i := range r.Sections {
		if r.Sections[i].Items == nil {
			r.Sections[i].Items = []string{}
		}
	}
}

// ItemCount returns the number of items across all sections.
func (r *Response) ItemCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Items)
	}
	return n
}

// requiredKeys must be present in a decoded document. A null value is
// accepted and decodes as empty.
var requiredKeys = []string{"title", "sections"}

// Decode reads a single JSON help document from r.
func Decode(r io.Reader) (*Response, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("decode help document: expected JSON object")
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode help document: %w", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decode help document: %w", err)
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("decode help document: missing %q", k)
		}
	}
	resp.Normalize()
	return &resp, nil
}

// Clone returns a normalized deep copy of r.
func (r *Response) Clone() *Response {
	out := &Response{Title: r.Title, Sections: make([]Section, len(r.Sections))}
	for i, s := range r.Sections {
		out.Sections[i] = Section{ID: s.ID, Title: s.Title, Items: append([]string{}, s.Items...)}
	}
	return out
}
