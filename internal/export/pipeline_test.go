package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelinePRD = `# Test Product

## Vision

A tool for busy people.

## Target Users

Small teams.

## Key Features

- quick setup

## Success Metrics

- weekly active teams
`

const pipelineTech = `# Tech Architecture

## Tech Stack

Go and MySQL.

## Data Model

Append-only versions.
`

const pipelineDesign = `# System Design

## System Overview

A small monolith.

## Components

API, worker, broker.

## Security

JWT everywhere.
`

const pipelineRoadmap = `# Roadmap

## User Accounts

Let people sign up.

### Goals

- registration works

### Acceptance Criteria

- a user can log in
`

func validSources() Sources {
	return Sources{
		PRD:              present(pipelinePRD),
		TechArchitecture: present(pipelineTech),
		Design:           present(pipelineDesign),
		Roadmap:          present(pipelineRoadmap),
	}
}

func TestPipelineBuildZip(t *testing.T) {
	p := NewPipeline(Packager{Now: fixedClock})

	pkg, err := p.Build(validSources(), "Test Product", FormatZip)
	require.NoError(t, err)
	assert.Equal(t, "kiro-setup-test-product-20250314-092653.zip", pkg.Filename)
	assert.NotEmpty(t, pkg.Zip)
}

func TestPipelineBuildIndividualLayout(t *testing.T) {
	p := NewPipeline(Packager{Now: fixedClock})

	pkg, err := p.Build(validSources(), "Test Product", FormatIndividual)
	require.NoError(t, err)

	byPath := map[string]string{}
	for _, f := range pkg.Files {
		byPath[f.Path] = f.Content
	}

	for _, path := range []string{
		"kiro-setup/steering/product.md",
		"kiro-setup/steering/tech.md",
		"kiro-setup/steering/architecture.md",
		"kiro-setup/steering/spec-generation.md",
		"kiro-setup/README.md",
		"kiro-setup/docs/PRD.md",
		"kiro-setup/docs/tech-architecture.md",
		"kiro-setup/docs/design.md",
		"kiro-setup/docs/roadmap.md",
		"kiro-setup/specs/user-accounts/requirements.md",
		"kiro-setup/specs/user-accounts/design.md",
		"kiro-setup/specs/user-accounts/tasks.md",
	} {
		assert.Contains(t, byPath, path)
	}

	// source documents are copied verbatim
	assert.Equal(t, pipelinePRD, byPath["kiro-setup/docs/PRD.md"])
	assert.Equal(t, pipelineRoadmap, byPath["kiro-setup/docs/roadmap.md"])

	// extracted content flows into the steering files
	assert.Contains(t, byPath["kiro-setup/steering/product.md"], "A tool for busy people.")
	assert.Contains(t, byPath["kiro-setup/steering/tech.md"], "Go and MySQL.")
	assert.Contains(t, byPath["kiro-setup/steering/architecture.md"], "A small monolith.")

	// the first roadmap item seeds the example feature spec
	assert.Contains(t, byPath["kiro-setup/specs/user-accounts/requirements.md"], "User Accounts")
}

func TestPipelineBlockedExport(t *testing.T) {
	p := NewPipeline(Packager{})

	src := validSources()
	src.Roadmap = Source{}
	src.Design = present("  ")

	_, err := p.Build(src, "Test Product", FormatZip)
	var blocked ErrNotExportable
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{SourceRoadmap}, blocked.Result.MissingDocuments)
	assert.Equal(t, []string{SourceDesign}, blocked.Result.EmptyDocuments)
}
