package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func present(content string) Source { return Source{Exists: true, Content: content} }

func TestValidateAllPresent(t *testing.T) {
	res := Validator{}.Validate(Sources{
		PRD:              present("# PRD"),
		Design:           present("# Design"),
		TechArchitecture: present("# Tech"),
		Roadmap:          present("# Roadmap"),
	})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.MissingDocuments)
	assert.Empty(t, res.EmptyDocuments)
}

func TestValidateDistinguishesMissingFromEmpty(t *testing.T) {
	res := Validator{}.Validate(Sources{
		PRD:              present("# PRD"),
		Design:           present("   \n\t"),
		TechArchitecture: Source{},
		Roadmap:          Source{},
	})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{SourceTechArchitecture, SourceRoadmap}, res.MissingDocuments)
	assert.Equal(t, []string{SourceDesign}, res.EmptyDocuments)
}

func TestValidateAllMissing(t *testing.T) {
	res := Validator{}.Validate(Sources{})
	assert.False(t, res.IsValid)
	assert.Len(t, res.MissingDocuments, 4)
	assert.Empty(t, res.EmptyDocuments)
}
