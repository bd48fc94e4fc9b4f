package export

import "fmt"

// Pipeline chains the validator gate and the five stages:
// parse -> roadmap parse -> extract -> render -> package.
type Pipeline struct {
	packager Packager
}

// NewPipeline builds a pipeline; a nil clock means wall time.
func NewPipeline(packager Packager) *Pipeline {
	return &Pipeline{packager: packager}
}

// ErrNotExportable is returned by Build alongside the validation
// detail when the source documents are incomplete.
type ErrNotExportable struct {
	Result ValidationResult
}

func (e ErrNotExportable) Error() string {
	return fmt.Sprintf("export blocked: %d missing, %d empty documents",
		len(e.Result.MissingDocuments), len(e.Result.EmptyDocuments))
}

// Build validates the sources and runs the full transformation.
// format is FormatZip or FormatIndividual.
func (p *Pipeline) Build(s Sources, ideaName, format string) (Package, error) {
	if res := (Validator{}).Validate(s); !res.IsValid {
		return Package{}, ErrNotExportable{Result: res}
	}

	src := SourceMarkdown{
		PRD:              s.PRD.Content,
		TechArchitecture: s.TechArchitecture.Content,
		Design:           s.Design.Content,
		Roadmap:          s.Roadmap.Content,
	}
	content := Extractor{}.Extract(src)
	files := FileGenerator{}.Generate(content, src, ideaName)
	return p.packager.Pack(files, ideaName, format)
}
