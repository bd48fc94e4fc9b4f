package ai

import (
	"fmt"
	"strings"

	"github.com/ideaforge/ideaforge/internal/model"
)

// instructions per document type. Each asks for well-structured
// markdown because the export pipeline later parses the heading tree.
var docInstructions = map[model.DocumentType]string{
	model.DocTypePRD: "Write a Product Requirements Document in markdown. " +
		"Start with a single H1 title. Include sections for Vision, Target Users, " +
		"Problem Statement, Key Features, Success Metrics and Out of Scope.",
	model.DocTypeTechnicalDesign: "Write a Technical Design document in markdown. " +
		"Start with a single H1 title. Include sections for Overview, Tech Stack, " +
		"Data Model, API Design, Libraries and Testing Strategy.",
	model.DocTypeArchitecture: "Write a software Architecture document in markdown. " +
		"Start with a single H1 title. Include sections for System Overview, Components, " +
		"Data Flow, Project Structure, Deployment and Security.",
	model.DocTypeRoadmap: "Write a delivery Roadmap in markdown. " +
		"Start with a single H1 title, then one H2 section per feature milestone. " +
		"Under each milestone list Goals, Acceptance Criteria and Dependencies as bullet lists.",
	model.DocTypeStartupAnalysis: "Analyze this startup idea in markdown: strengths, " +
		"weaknesses, market fit, competition and a 0-100 viability score. " +
		"End with a line of the form 'Score: NN/100'.",
	model.DocTypeHackathonAnalysis: "Analyze this hackathon idea in markdown: feasibility " +
		"within a weekend, wow factor, technical risk and a 0-100 score. " +
		"End with a line of the form 'Score: NN/100'.",
}

// buildPrompt assembles the provider prompt from the generation
// context. Sibling documents and analysis results are included only
// when present so first-time generation stays compact.
func buildPrompt(docType model.DocumentType, gc GenerationContext) string {
	var b strings.Builder

	inst, ok := docInstructions[docType]
	if !ok {
		inst = "Write a planning document in markdown with a single H1 title."
	}
	b.WriteString(inst)
	b.WriteString("\n\n## The idea\n\n")
	b.WriteString(strings.TrimSpace(gc.IdeaText))
	b.WriteString("\n")

	if gc.AnalysisScore != nil {
		fmt.Fprintf(&b, "\n## Prior analysis\n\nScore: %d/100\n", *gc.AnalysisScore)
		if gc.AnalysisFeedback != "" {
			b.WriteString("\n")
			b.WriteString(gc.AnalysisFeedback)
			b.WriteString("\n")
		}
	}

	writeSibling(&b, "Existing PRD", gc.ExistingPRD)
	writeSibling(&b, "Existing Technical Design", gc.ExistingTechnicalDesign)
	writeSibling(&b, "Existing Architecture", gc.ExistingArchitecture)

	b.WriteString("\nRespond with the markdown document only, no preamble.\n")
	return b.String()
}

func writeSibling(b *strings.Builder, heading, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n%s\n", heading, content)
}
