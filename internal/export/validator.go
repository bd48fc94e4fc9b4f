package export

import "strings"

// Document names reported by the validator, matching the keys the
// frontend shows to the user.
const (
	SourcePRD              = "prd"
	SourceDesign           = "design"
	SourceTechArchitecture = "techArchitecture"
	SourceRoadmap          = "roadmap"
)

// Source is one candidate input document. Exists is false when the
// document was never generated; Content may still be blank when it
// exists.
type Source struct {
	Exists  bool
	Content string
}

// Sources are the four documents the export pipeline requires.
type Sources struct {
	PRD              Source
	Design           Source
	TechArchitecture Source
	Roadmap          Source
}

// ValidationResult distinguishes documents that are missing entirely
// from ones that exist with empty (whitespace-only) content, so the
// user is told which documents to generate vs regenerate.
type ValidationResult struct {
	IsValid          bool
	MissingDocuments []string
	EmptyDocuments   []string
}

// Validator gates the pipeline: export is refused until all four
// documents are present with non-whitespace content. An existing but
// whitespace-only document blocks export just like a missing one.
type Validator struct{}

func (Validator) Validate(s Sources) ValidationResult {
	res := ValidationResult{}
	check := func(name string, src Source) {
		if !src.Exists {
			res.MissingDocuments = append(res.MissingDocuments, name)
			return
		}
		if strings.TrimSpace(src.Content) == "" {
			res.EmptyDocuments = append(res.EmptyDocuments, name)
		}
	}
	check(SourcePRD, s.PRD)
	check(SourceDesign, s.Design)
	check(SourceTechArchitecture, s.TechArchitecture)
	check(SourceRoadmap, s.Roadmap)

	res.IsValid = len(res.MissingDocuments) == 0 && len(res.EmptyDocuments) == 0
	return res
}
