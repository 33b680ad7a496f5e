package source

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// coreProperties is the shared OOXML docProps/core.xml shape (DOCX and
// PPTX use the same part).
type coreProperties struct {
	XMLName  xml.Name `xml:"coreProperties"`
	Title    string   `xml:"title"`
	Language string   `xml:"language"`
}

// zipIndex builds a name → file lookup for an opened OOXML container.
func zipIndex(r *zip.Reader) map[string]*zip.File {
	idx := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		idx[f.Name] = f
	}
	return idx
}

// readZipFile reads one entry fully, returning nil when absent or
// unreadable — metadata parts are best-effort.
func readZipFile(idx map[string]*zip.File, name string) []byte {
	f := idx[name]
	if f == nil {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil
	}
	return data
}

// coreMetadata extracts the document title and language from
// docProps/core.xml.
func coreMetadata(idx map[string]*zip.File) Metadata {
	data := readZipFile(idx, "docProps/core.xml")
	if data == nil {
		return Metadata{}
	}
	var props coreProperties
	if err := xml.Unmarshal(data, &props); err != nil {
		return Metadata{}
	}
	return Metadata{
		Title:    strings.TrimSpace(props.Title),
		Language: strings.TrimSpace(props.Language),
	}
}

// ooxmlOn interprets an OOXML boolean value. An empty value means the
// attribute or element was present without a value, which OOXML defines
// as true.
func ooxmlOn(v string) bool {
	return v == "" || v == "1" || v == "true"
}
