package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/loanbuddy/helpctl/internal/help"
	"gopkg.in/yaml.v3"
)

// Encode writes doc to w in the given format. The output can be read back
// with Parse.
func Encode(w io.Writer, doc *help.Response, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(toFile(doc))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toFile(doc)); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func toFile(doc *help.Response) file {
	f := file{Title: doc.Title}
	for _, s := range doc.Sections {
		items := s.Items
		if items == nil {
			items = []string{}
		}
		f.Sections = append(f.Sections, fileSection{ID: s.ID, Title: s.Title, Items: items})
	}
	return f
}
