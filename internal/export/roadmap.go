package export

import "strings"

// RoadmapItem is one deliverable milestone pulled out of the roadmap
// document.
type RoadmapItem struct {
	Title              string
	Description        string
	Goals              []string
	AcceptanceCriteria []string
	Dependencies       []string
}

// ParsedRoadmap is the structured view of the roadmap document. Raw
// always carries the original markdown untouched; downstream stages
// never reformat roadmap content.
type ParsedRoadmap struct {
	Title string
	Items []RoadmapItem
	Raw   string
}

// FirstItem returns the first item encountered, used to seed the
// example feature spec, or nil when the roadmap yielded no items.
func (p ParsedRoadmap) FirstItem() *RoadmapItem {
	if len(p.Items) == 0 {
		return nil
	}
	return &p.Items[0]
}

// RoadmapParser specializes the heading-tree parse for roadmaps:
// items are H2 sections, falling back to H3 sections, falling back
// to a bullet-list heuristic keyed on bold-leading list items.
type RoadmapParser struct{}

func (RoadmapParser) Parse(markdown string) ParsedRoadmap {
	doc := Parser{}.Parse(markdown)
	rm := ParsedRoadmap{Title: doc.Title, Raw: markdown}

	rm.Items = itemsAtDepth(doc.Sections, 2)
	if len(rm.Items) == 0 {
		rm.Items = itemsAtDepth(doc.Sections, 3)
	}
	if len(rm.Items) == 0 {
		rm.Items = itemsFromBullets(markdown)
	}
	return rm
}

// itemsAtDepth turns every section of the wanted depth into an item.
func itemsAtDepth(secs []*Section, depth int) []RoadmapItem {
	var items []RoadmapItem
	walkSections(secs, func(s *Section) {
		if s.Depth == depth {
			items = append(items, itemFromSection(s))
		}
	})
	return items
}

// itemFromSection builds an item from a milestone section. Goals,
// acceptance criteria and dependencies are recognized either as child
// sections or as bold labels ("**Goals:**") followed by bullets
// inside the body.
func itemFromSection(s *Section) RoadmapItem {
	item := RoadmapItem{Title: s.Heading}

	var desc []string
	label := ""
	consume := func(text string) {
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(line)
			if l, ok := bulletLabel(trimmed); ok {
				label = l
				continue
			}
			if b, ok := bulletText(trimmed); ok && label != "" {
				item.appendTo(label, b)
				continue
			}
			if trimmed == "" {
				label = ""
				continue
			}
			if label == "" {
				desc = append(desc, trimmed)
			}
		}
	}
	consume(s.Body)
	for _, c := range s.Children {
		if l := matchLabel(c.Heading); l != "" {
			for _, line := range strings.Split(c.Body, "\n") {
				if b, ok := bulletText(strings.TrimSpace(line)); ok {
					item.appendTo(l, b)
				}
			}
			continue
		}
		consume(c.Heading + "\n" + c.Body)
	}
	item.Description = strings.Join(desc, " ")
	return item
}

func (it *RoadmapItem) appendTo(label, value string) {
	switch label {
	case "goals":
		it.Goals = append(it.Goals, value)
	case "acceptance":
		it.AcceptanceCriteria = append(it.AcceptanceCriteria, value)
	case "dependencies":
		it.Dependencies = append(it.Dependencies, value)
	}
}

// matchLabel normalizes a heading or bold label into one of the three
// recognized list kinds.
func matchLabel(raw string) string {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "*: "))
	switch {
	case strings.Contains(s, "goal"):
		return "goals"
	case strings.Contains(s, "acceptance"):
		return "acceptance"
	case strings.Contains(s, "depend"):
		return "dependencies"
	}
	return ""
}

// bulletLabel recognizes a bold label line such as "**Goals:**".
func bulletLabel(line string) (string, bool) {
	if !strings.HasPrefix(line, "**") {
		return "", false
	}
	if l := matchLabel(line); l != "" {
		return l, true
	}
	return "", false
}

// bulletText strips a leading list marker and returns the content.
func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}

// itemsFromBullets is the last-resort heuristic: top-level list items
// leading with bold text become items, "- **Login flow**: basic auth"
// style.
func itemsFromBullets(markdown string) []RoadmapItem {
	var items []RoadmapItem
	for _, line := range strings.Split(markdown, "\n") {
		b, ok := bulletText(strings.TrimSpace(line))
		if !ok || !strings.HasPrefix(b, "**") {
			continue
		}
		rest := b[2:]
		end := strings.Index(rest, "**")
		if end <= 0 {
			continue
		}
		title := strings.TrimSpace(rest[:end])
		desc := strings.TrimSpace(strings.TrimLeft(rest[end+2:], ":- "))
		items = append(items, RoadmapItem{Title: title, Description: desc})
	}
	return items
}
