package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/export"
	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/repository"
)

type fakeLatestFinder struct {
	docs map[model.DocumentType]string
}

func (f *fakeLatestFinder) FindLatestVersion(_ context.Context, _ uint64, docType model.DocumentType) (model.Document, error) {
	content, ok := f.docs[docType]
	if !ok {
		return model.Document{}, repository.ErrDocumentNotFound
	}
	return model.Document{Content: content}, nil
}

// Documents shaped the way the generation prompts request them: the
// technical design carries the stack and data model, the architecture
// document carries the system overview and components.
const (
	exportTestPRD = "# Idea\n\n## Vision\n\nA tool people want.\n"

	exportTestTechnicalDesign = "# Technical Design\n\n## Tech Stack\n\nGo, MySQL, Redis.\n\n" +
		"## Data Model\n\nAppend-only versions.\n"

	exportTestArchitecture = "# Architecture\n\n## System Overview\n\nLayered monolith.\n\n" +
		"## Components\n\nAPI, worker, broker.\n"

	exportTestRoadmap = "# Roadmap\n\n## Phase One\n\nShip it.\n"
)

func promptShapedFinder() *fakeLatestFinder {
	return &fakeLatestFinder{docs: map[model.DocumentType]string{
		model.DocTypePRD:             exportTestPRD,
		model.DocTypeTechnicalDesign: exportTestTechnicalDesign,
		model.DocTypeArchitecture:    exportTestArchitecture,
		model.DocTypeRoadmap:         exportTestRoadmap,
	}}
}

// The technical design document must feed the pipeline's
// techArchitecture source and the architecture document its design
// source, so the steering files pull from the right documents.
func TestBuildSourcesFeedsPipelineFields(t *testing.T) {
	h := &ExportHandler{Docs: promptShapedFinder()}

	sources := h.buildSources(context.Background(), 1)
	assert.Equal(t, exportTestTechnicalDesign, sources.TechArchitecture.Content)
	assert.Equal(t, exportTestArchitecture, sources.Design.Content)
	assert.Equal(t, exportTestPRD, sources.PRD.Content)
	assert.Equal(t, exportTestRoadmap, sources.Roadmap.Content)

	content := export.Extractor{}.Extract(export.SourceMarkdown{
		PRD:              sources.PRD.Content,
		TechArchitecture: sources.TechArchitecture.Content,
		Design:           sources.Design.Content,
		Roadmap:          sources.Roadmap.Content,
	})
	assert.Equal(t, "Go, MySQL, Redis.", content.Tech.Stack)
	assert.Equal(t, "Layered monolith.", content.Architecture.Overview)
}

func TestBuildSourcesMissingDocument(t *testing.T) {
	finder := promptShapedFinder()
	delete(finder.docs, model.DocTypeRoadmap)
	h := &ExportHandler{Docs: finder}

	sources := h.buildSources(context.Background(), 1)
	assert.False(t, sources.Roadmap.Exists)
	assert.True(t, sources.PRD.Exists)

	res := export.Validator{}.Validate(sources)
	require.False(t, res.IsValid)
	assert.Equal(t, []string{export.SourceRoadmap}, res.MissingDocuments)
}
