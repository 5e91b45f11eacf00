// Package artifact describes the documents produced by the generation
// service and classifies them for presentation.
package artifact

import (
	"path"
	"strings"
)

// Kind is the presentation category of an artifact.
type Kind string

// Artifact kinds.
const (
	KindPDF          Kind = "pdf"
	KindWordDocument Kind = "word-document"
	KindMarkup       Kind = "markup"
	KindMarkdown     Kind = "markdown-or-code"
	KindGeneric      Kind = "generic"
)

var kindsByExt = map[string]Kind{
	"pdf":  KindPDF,
	"docx": KindWordDocument,
	"html": KindMarkup,
	"md":   KindMarkdown,
}

// Descriptor identifies one generated document.
//
// ServerPath is opaque to the client; it is only ever handed back to the
// download endpoint.
type Descriptor struct {
	DisplayName string `json:"name"`
	ServerPath  string `json:"path"`
}

// Kind returns the presentation category of the descriptor's display name.
func (d Descriptor) Kind() Kind {
	return Resolve(d.DisplayName)
}

// Resolve maps a file name to its presentation category. Extension matching
// is case-insensitive; names without a recognized extension are generic.
func Resolve(filename string) Kind {
	ext := path.Ext(filename)
	if ext == "" {
		return KindGeneric
	}
	if kind, ok := kindsByExt[strings.ToLower(ext[1:])]; ok {
		return kind
	}
	return KindGeneric
}

// Label returns a short human label for a kind, used by table output.
func (k Kind) Label() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindWordDocument:
		return "Word"
	case KindMarkup:
		return "HTML"
	case KindMarkdown:
		return "Markdown"
	default:
		return "File"
	}
}
