package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Export formats accepted by the packager.
const (
	FormatZip        = "zip"
	FormatIndividual = "individual"
)

// rootFolder is the fixed top-level folder of every bundle. The
// layout below it (steering/, specs/<feature>/, docs/, README.md) is
// relied on by downstream tooling and must not change.
const rootFolder = "kiro-setup"

// Package is the packager output: either a ZIP blob or the flat file
// list, plus the download filename.
type Package struct {
	Filename  string
	FileCount int
	Zip       []byte // set for FormatZip
	Files     []File // set for FormatIndividual, paths prefixed with the folder layout
}

// Packager assembles generated files into the downloadable bundle.
// now is injectable for deterministic filenames in tests.
type Packager struct {
	Now func() time.Time
}

// Pack arranges files under the fixed folder layout and renders the
// requested format. Unknown formats fail rather than guessing.
func (p Packager) Pack(files []File, ideaName, format string) (Package, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	slug := SanitizeIdeaName(ideaName)
	stamp := now().Format("20060102-150405")

	prefixed := make([]File, len(files))
	for i, f := range files {
		prefixed[i] = File{Path: rootFolder + "/" + f.Path, Content: f.Content}
	}

	switch format {
	case FormatZip:
		blob, err := zipFiles(prefixed)
		if err != nil {
			return Package{}, err
		}
		return Package{
			Filename:  fmt.Sprintf("kiro-setup-%s-%s.zip", slug, stamp),
			FileCount: len(prefixed),
			Zip:       blob,
		}, nil
	case FormatIndividual:
		return Package{
			Filename:  fmt.Sprintf("kiro-setup-%s-%s", slug, stamp),
			FileCount: len(prefixed),
			Files:     prefixed,
		}, nil
	}
	return Package{}, fmt.Errorf("unknown export format %q", format)
}

func zipFiles(files []File) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.Create(f.Path)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write([]byte(f.Content)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SanitizeIdeaName turns an idea name into a filename-safe slug:
// lowercased, non-alphanumerics stripped, whitespace runs collapsed
// to single hyphens, no leading or trailing hyphens.
func SanitizeIdeaName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			b.WriteByte(' ')
		}
		// every other character is dropped
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
