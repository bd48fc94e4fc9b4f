// Package export implements the document export pipeline: parsing the
// generated markdown documents, extracting templated content from
// them, rendering steering files and packaging everything into a
// downloadable kiro-setup bundle. Every stage is a pure function of
// its inputs; nothing here touches the ledger or the version store.
package export

import "strings"

// Section is one node of a heading-hierarchy tree. Body holds the
// text belonging to the heading itself, up to the next heading of
// equal or shallower depth; deeper headings become Children.
type Section struct {
	Heading  string
	Depth    int // 1..6, number of '#' characters
	Body     string
	Children []*Section
}

// ParsedDocument is the result of parsing one markdown document. The
// first H1 is treated as the document title and excluded from the
// section tree. Preamble collects body text that appears before any
// heading (after frontmatter).
type ParsedDocument struct {
	Title    string
	Metadata map[string]string
	Preamble string
	Sections []*Section
	Raw      string
}

// Parser splits markdown on heading lines and builds the section
// tree. Optional leading frontmatter delimited by '---' lines is
// extracted into a flat key/value map.
type Parser struct{}

// Parse never fails: malformed markdown degrades to a flat tree or a
// single preamble blob.
func (Parser) Parse(markdown string) ParsedDocument {
	doc := ParsedDocument{Raw: markdown, Metadata: map[string]string{}}
	lines := strings.Split(markdown, "\n")
	lines = parseFrontmatter(lines, doc.Metadata)

	// stack of open sections, one per depth currently nested
	var stack []*Section
	var body strings.Builder
	flush := func() {
		text := strings.TrimSpace(body.String())
		body.Reset()
		if text == "" {
			return
		}
		if len(stack) == 0 {
			if doc.Preamble != "" {
				doc.Preamble += "\n\n"
			}
			doc.Preamble += text
			return
		}
		top := stack[len(stack)-1]
		if top.Body != "" {
			top.Body += "\n\n"
		}
		top.Body += text
	}

	for _, line := range lines {
		depth, heading, ok := parseHeading(line)
		if !ok {
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}
		flush()

		if depth == 1 && doc.Title == "" && len(stack) == 0 {
			// first H1 names the document, it does not open a section
			doc.Title = heading
			continue
		}

		sec := &Section{Heading: heading, Depth: depth}
		// pop until the parent is strictly shallower
		for len(stack) > 0 && stack[len(stack)-1].Depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			doc.Sections = append(doc.Sections, sec)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, sec)
		}
		stack = append(stack, sec)
	}
	flush()
	return doc
}

// parseFrontmatter consumes a leading '--- ... ---' block, filling
// meta with its key: value lines, and returns the remaining lines.
func parseFrontmatter(lines []string, meta map[string]string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || strings.TrimSpace(lines[start]) != "---" {
		return lines
	}
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			for _, l := range lines[start+1 : i] {
				k, v, ok := strings.Cut(l, ":")
				if !ok {
					continue
				}
				key := strings.TrimSpace(k)
				if key != "" {
					meta[key] = strings.TrimSpace(v)
				}
			}
			return lines[i+1:]
		}
	}
	return lines // unterminated block is treated as plain text
}

// parseHeading recognizes ATX headings (# through ######) and returns
// the depth and trimmed heading text.
func parseHeading(line string) (int, string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return 0, "", false
	}
	depth := 0
	for depth < len(trimmed) && trimmed[depth] == '#' {
		depth++
	}
	if depth > 6 || depth == len(trimmed) || trimmed[depth] != ' ' {
		return 0, "", false
	}
	return depth, strings.TrimSpace(trimmed[depth:]), true
}

// walkSections visits every section of the tree depth-first.
func walkSections(secs []*Section, visit func(*Section)) {
	for _, s := range secs {
		visit(s)
		walkSections(s.Children, visit)
	}
}

// sectionText returns a section's own body followed by the text of
// its children, flattened.
func sectionText(s *Section) string {
	parts := []string{}
	if strings.TrimSpace(s.Body) != "" {
		parts = append(parts, strings.TrimSpace(s.Body))
	}
	for _, c := range s.Children {
		if t := sectionText(c); t != "" {
			parts = append(parts, c.Heading+"\n"+t)
		}
	}
	return strings.Join(parts, "\n\n")
}
