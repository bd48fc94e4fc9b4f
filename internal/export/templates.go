package export

// Steering and scaffold templates rendered by Engine. The
// #[[file:...]] references are the file-reference syntax understood
// by the downstream coding assistant; paths are relative to the
// bundle root.

const productSteeringTmpl = `# Product Overview

{{#if vision}}## Vision

{{vision}}

{{/if}}{{#if problem}}## Problem

{{problem}}

{{/if}}{{#if targetUsers}}## Target Users

{{targetUsers}}

{{/if}}{{#if features}}## Key Features

{{features}}

{{/if}}{{#if metrics}}## Success Metrics

{{metrics}}

{{/if}}## Source

Full product requirements: #[[file:docs/PRD.md]]
`

const techSteeringTmpl = `# Technology

{{#if stack}}## Tech Stack

{{stack}}

{{/if}}{{#if libraries}}## Libraries

{{libraries}}

{{/if}}{{#if dataModel}}## Data Model

{{dataModel}}

{{/if}}{{#if apis}}## API Design

{{apis}}

{{/if}}{{#if testing}}## Testing

{{testing}}

{{/if}}## Source

Full technical design: #[[file:docs/tech-architecture.md]]
`

const architectureSteeringTmpl = `# Architecture

{{#if overview}}## System Overview

{{overview}}

{{/if}}{{#if components}}## Components

{{components}}

{{/if}}{{#if dataFlow}}## Data Flow

{{dataFlow}}

{{/if}}{{#if structure}}## Project Structure

{{structure}}

{{/if}}{{#if security}}## Security

{{security}}

{{/if}}## Source

Full architecture document: #[[file:docs/design.md]]
`

const specGenerationSteeringTmpl = `# Spec Generation Guidance

When creating a new feature spec for {{ideaName}}, follow the
structure demonstrated in specs/{{firstFeatureSlug}}/:

1. requirements.md - user stories with acceptance criteria
2. design.md - how the feature fits the existing architecture
3. tasks.md - an ordered, checkable implementation plan

Derive features from the roadmap: #[[file:docs/roadmap.md]]
{{#if items}}
## Roadmap features

{{#each items}}{{index}}. {{title}}{{#if description}} - {{description}}{{/if}}
{{/each}}{{/if}}`

const readmeTmpl = `# {{ideaName}} - Kiro Setup

This bundle was generated from the planning documents of
"{{ideaName}}". Drop the contents into your project root.

## Layout

- steering/ - persistent context for the AI coding assistant
- specs/ - one folder per feature spec{{#if firstFeatureSlug}} (seeded with {{firstFeatureSlug}}){{/if}}
- docs/ - the source planning documents

Steering files reference the source documents with
#[[file:relative/path]] syntax.
`

const specRequirementsTmpl = `# Requirements: {{featureTitle}}

{{#if featureDescription}}{{featureDescription}}

{{/if}}{{#if goals}}## Goals

{{#each goals}}- {{this}}
{{/each}}
{{/if}}{{#if acceptanceCriteria}}## Acceptance Criteria

{{#each acceptanceCriteria}}- {{this}}
{{/each}}
{{/if}}{{#if dependencies}}## Dependencies

{{#each dependencies}}- {{this}}
{{/each}}
{{/if}}`

const specDesignTmpl = `# Design: {{featureTitle}}

Align this feature with the system architecture described in
#[[file:steering/architecture.md]] and the stack in
#[[file:steering/tech.md]].

## Approach

Describe the implementation approach for "{{featureTitle}}" here
before starting work.
`

const specTasksTmpl = `# Tasks: {{featureTitle}}

- [ ] Review #[[file:specs/{{featureSlug}}/requirements.md]]
- [ ] Fill in #[[file:specs/{{featureSlug}}/design.md]]
{{#if goals}}{{#each goals}}- [ ] {{this}}
{{/each}}{{/if}}- [ ] Verify acceptance criteria
`
