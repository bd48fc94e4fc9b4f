package export

import "strings"

// maxFallbackParagraphs caps the body-scan fallback so a stray
// keyword cannot drag half a document into a template field.
const maxFallbackParagraphs = 3

// ProductContent is the product-facing shape pulled from the PRD.
type ProductContent struct {
	Vision      string
	TargetUsers string
	Problem     string
	Features    string
	Metrics     string
}

// TechContent is pulled from the technical design document.
type TechContent struct {
	Stack     string
	Libraries string
	DataModel string
	APIs      string
	Testing   string
}

// ArchitectureContent is pulled from the architecture document.
type ArchitectureContent struct {
	Overview   string
	Components string
	DataFlow   string
	Structure  string
	Security   string
}

// RoadmapContent carries the structured items plus the original raw
// text, which is copied into the bundle verbatim.
type RoadmapContent struct {
	Items []RoadmapItem
	Raw   string
}

// ExtractedContent is the combined input to the template engine.
type ExtractedContent struct {
	Product      ProductContent
	Tech         TechContent
	Architecture ArchitectureContent
	Roadmap      RoadmapContent
}

// Extractor locates template fields inside the parsed documents by
// matching section headings against ordered synonym lists; the first
// synonym with a matching section wins. When no heading matches, it
// falls back to scanning every section body for whole-word keyword
// occurrences and concatenating the first few matching paragraphs.
type Extractor struct{}

// SourceMarkdown is the raw text of the four generated documents.
type SourceMarkdown struct {
	PRD              string
	TechArchitecture string
	Design           string
	Roadmap          string
}

func (Extractor) Extract(src SourceMarkdown) ExtractedContent {
	prd := Parser{}.Parse(src.PRD)
	tech := Parser{}.Parse(src.TechArchitecture)
	design := Parser{}.Parse(src.Design)
	roadmap := RoadmapParser{}.Parse(src.Roadmap)

	return ExtractedContent{
		Product: ProductContent{
			Vision:      extractField(prd, []string{"vision", "product vision", "our vision", "overview"}),
			TargetUsers: extractField(prd, []string{"target users", "target audience", "users", "personas", "customers"}),
			Problem:     extractField(prd, []string{"problem statement", "problem", "pain points"}),
			Features:    extractField(prd, []string{"key features", "features", "functionality", "capabilities"}),
			Metrics:     extractField(prd, []string{"success metrics", "metrics", "kpis"}),
		},
		Tech: TechContent{
			Stack:     extractField(tech, []string{"tech stack", "technology stack", "stack", "technologies"}),
			Libraries: extractField(tech, []string{"libraries", "dependencies", "packages", "frameworks"}),
			DataModel: extractField(tech, []string{"data model", "database", "schema", "storage"}),
			APIs:      extractField(tech, []string{"api design", "apis", "api", "endpoints", "interfaces"}),
			Testing:   extractField(tech, []string{"testing strategy", "testing", "tests", "quality"}),
		},
		Architecture: ArchitectureContent{
			Overview:   extractField(design, []string{"system overview", "architecture overview", "overview"}),
			Components: extractField(design, []string{"components", "modules", "services"}),
			DataFlow:   extractField(design, []string{"data flow", "control flow", "flow"}),
			Structure:  extractField(design, []string{"project structure", "folder structure", "structure", "layout"}),
			Security:   extractField(design, []string{"security", "authentication", "authorization"}),
		},
		Roadmap: RoadmapContent{Items: roadmap.Items, Raw: src.Roadmap},
	}
}

// extractField finds the best section for an ordered synonym list.
// Headings match on whole words so "vision" selects "Product Vision"
// but not "Revision History".
func extractField(doc ParsedDocument, synonyms []string) string {
	for _, syn := range synonyms {
		var found *Section
		walkSections(doc.Sections, func(s *Section) {
			if found == nil && containsWord(s.Heading, syn) {
				found = s
			}
		})
		if found != nil {
			return sectionText(found)
		}
	}
	return fallbackScan(doc, synonyms)
}

// fallbackScan concatenates paragraphs that contain any synonym as a
// whole word, anywhere in the document, capped at
// maxFallbackParagraphs. Whole-word matching keeps incidental
// substrings ("user" in "username") from pulling in noise.
func fallbackScan(doc ParsedDocument, synonyms []string) string {
	var matches []string
	scan := func(text string) {
		for _, para := range strings.Split(text, "\n\n") {
			if len(matches) >= maxFallbackParagraphs {
				return
			}
			for _, syn := range synonyms {
				if containsWord(para, syn) {
					matches = append(matches, strings.TrimSpace(para))
					break
				}
			}
		}
	}
	scan(doc.Preamble)
	walkSections(doc.Sections, func(s *Section) { scan(s.Body) })
	return strings.Join(matches, "\n\n")
}

// containsWord reports whether text contains phrase as whole words,
// case-insensitively.
func containsWord(text, phrase string) bool {
	lower := strings.ToLower(text)
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(lower[i-1])
		after := i+len(phrase) >= len(lower) || !isWordByte(lower[i+len(phrase)])
		if before && after {
			return true
		}
		idx = i + len(phrase)
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
