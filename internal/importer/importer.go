// Package importer reads help documents from JSON, TOML and YAML files.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/loanbuddy/helpctl/internal/help"
	"gopkg.in/yaml.v3"
)

// Format identifies a content file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for files whose extension is not recognized.
var ErrUnknownFormat = errors.New("unknown content format")

// file mirrors help.Response with tags for every supported encoding.
type file struct {
	Title    string        `toml:"title" yaml:"title"`
	Sections []fileSection `toml:"sections" yaml:"sections"`
}

type fileSection struct {
	ID    string   `toml:"id" yaml:"id"`
	Title string   `toml:"title" yaml:"title"`
	Items []string `toml:"items" yaml:"items"`
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
}

// ReadFile decodes and validates the help document at path.
func ReadFile(path string) (*help.Response, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Parse decodes data in the given format and validates the result.
func Parse(data []byte, format Format) (*help.Response, error) {
	var doc *help.Response
	switch format {
	case FormatJSON:
		d, err := help.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		doc = d
	case FormatTOML:
		var f file
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		doc = f.response()
	case FormatYAML:
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		doc = f.response()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks the constraints the store relies on.
func Validate(doc *help.Response) error {
	if doc == nil {
		return errors.New("empty document")
	}
	if strings.TrimSpace(doc.Title) == "" {
		return errors.New("title is required")
	}
	seen := make(map[string]int, len(doc.Sections))
	for i, sec := range doc.Sections {
		if strings.TrimSpace(sec.ID) == "" {
			return fmt.Errorf("section %d: id is required", i+1)
		}
		if prev, ok := seen[sec.ID]; ok {
			return fmt.Errorf("section %d: duplicate id %q (first used by section %d)", i+1, sec.ID, prev+1)
		}
		seen[sec.ID] = i
	}
	return nil
}

func (f file) response() *help.Response {
	doc := &help.Response{Title: f.Title}
	for _, s := range f.Sections {
		doc.Sections = append(doc.Sections, help.Section{ID: s.ID, Title: s.Title, Items: s.Items})
	}
	doc.Normalize()
	return doc
}
