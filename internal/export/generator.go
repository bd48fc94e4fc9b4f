package export

// FileGenerator renders the extracted content through the steering
// templates into the full file set of the bundle, with paths relative
// to the bundle root.
type FileGenerator struct {
	engine Engine
}

// File is one generated file of the bundle.
type File struct {
	Path    string
	Content string
}

// Generate produces the steering documents, the README, the example
// feature spec seeded from the first roadmap item, and verbatim
// copies of the four source documents.
func (g FileGenerator) Generate(content ExtractedContent, src SourceMarkdown, ideaName string) []File {
	var firstItem *RoadmapItem
	if len(content.Roadmap.Items) > 0 {
		firstItem = &content.Roadmap.Items[0]
	}
	featureSlug := ""
	if firstItem != nil {
		featureSlug = SanitizeIdeaName(firstItem.Title)
	}

	items := make([]map[string]any, 0, len(content.Roadmap.Items))
	for _, it := range content.Roadmap.Items {
		items = append(items, map[string]any{
			"title":       it.Title,
			"description": it.Description,
		})
	}

	base := map[string]any{
		"ideaName":         ideaName,
		"firstFeatureSlug": featureSlug,
		"items":            items,
	}

	files := []File{
		{Path: "steering/product.md", Content: g.engine.Render(productSteeringTmpl, withProduct(base, content.Product))},
		{Path: "steering/tech.md", Content: g.engine.Render(techSteeringTmpl, withTech(base, content.Tech))},
		{Path: "steering/architecture.md", Content: g.engine.Render(architectureSteeringTmpl, withArchitecture(base, content.Architecture))},
		{Path: "steering/spec-generation.md", Content: g.engine.Render(specGenerationSteeringTmpl, base)},
		{Path: "README.md", Content: g.engine.Render(readmeTmpl, base)},
		{Path: "docs/PRD.md", Content: src.PRD},
		{Path: "docs/tech-architecture.md", Content: src.TechArchitecture},
		{Path: "docs/design.md", Content: src.Design},
		{Path: "docs/roadmap.md", Content: src.Roadmap},
	}

	if firstItem != nil {
		scope := map[string]any{
			"featureTitle":       firstItem.Title,
			"featureDescription": firstItem.Description,
			"featureSlug":        featureSlug,
			"goals":              firstItem.Goals,
			"acceptanceCriteria": firstItem.AcceptanceCriteria,
			"dependencies":       firstItem.Dependencies,
		}
		dir := "specs/" + featureSlug + "/"
		files = append(files,
			File{Path: dir + "requirements.md", Content: g.engine.Render(specRequirementsTmpl, scope)},
			File{Path: dir + "design.md", Content: g.engine.Render(specDesignTmpl, scope)},
			File{Path: dir + "tasks.md", Content: g.engine.Render(specTasksTmpl, scope)},
		)
	}
	return files
}

func withProduct(base map[string]any, p ProductContent) map[string]any {
	return merged(base, map[string]any{
		"vision": p.Vision, "targetUsers": p.TargetUsers, "problem": p.Problem,
		"features": p.Features, "metrics": p.Metrics,
	})
}

func withTech(base map[string]any, t TechContent) map[string]any {
	return merged(base, map[string]any{
		"stack": t.Stack, "libraries": t.Libraries, "dataModel": t.DataModel,
		"apis": t.APIs, "testing": t.Testing,
	})
}

func withArchitecture(base map[string]any, a ArchitectureContent) map[string]any {
	return merged(base, map[string]any{
		"overview": a.Overview, "components": a.Components, "dataFlow": a.DataFlow,
		"structure": a.Structure, "security": a.Security,
	})
}

func merged(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
