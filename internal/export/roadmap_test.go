package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadmapItemsFromH2(t *testing.T) {
	md := `# Roadmap

## MVP Launch

Ship the smallest usable product.

### Goals

- working auth
- one happy path

### Acceptance Criteria

- demo runs end to end

## Beta

Open the doors.
`
	rm := RoadmapParser{}.Parse(md)

	assert.Equal(t, "Roadmap", rm.Title)
	require.Len(t, rm.Items, 2)

	mvp := rm.Items[0]
	assert.Equal(t, "MVP Launch", mvp.Title)
	assert.Equal(t, "Ship the smallest usable product.", mvp.Description)
	assert.Equal(t, []string{"working auth", "one happy path"}, mvp.Goals)
	assert.Equal(t, []string{"demo runs end to end"}, mvp.AcceptanceCriteria)

	assert.Equal(t, "Beta", rm.Items[1].Title)
	assert.Equal(t, "Open the doors.", rm.Items[1].Description)
}

func TestRoadmapFallsBackToH3(t *testing.T) {
	md := "# Roadmap\n\n### Phase One\n\nfirst\n\n### Phase Two\n\nsecond\n"
	rm := RoadmapParser{}.Parse(md)

	require.Len(t, rm.Items, 2)
	assert.Equal(t, "Phase One", rm.Items[0].Title)
	assert.Equal(t, "Phase Two", rm.Items[1].Title)
}

func TestRoadmapFallsBackToBoldBullets(t *testing.T) {
	md := `# Roadmap

- **Login flow**: basic email auth
- **Billing**: stripe checkout
- plain bullet without bold is skipped
`
	rm := RoadmapParser{}.Parse(md)

	require.Len(t, rm.Items, 2)
	assert.Equal(t, "Login flow", rm.Items[0].Title)
	assert.Equal(t, "basic email auth", rm.Items[0].Description)
	assert.Equal(t, "Billing", rm.Items[1].Title)
	assert.Equal(t, "stripe checkout", rm.Items[1].Description)
}

func TestRoadmapBoldLabelsInsideBody(t *testing.T) {
	md := `# Roadmap

## Alpha

Kick things off.

**Goals:**
- land the walking skeleton

**Dependencies:**
- infra account
`
	rm := RoadmapParser{}.Parse(md)

	require.Len(t, rm.Items, 1)
	item := rm.Items[0]
	assert.Equal(t, "Kick things off.", item.Description)
	assert.Equal(t, []string{"land the walking skeleton"}, item.Goals)
	assert.Equal(t, []string{"infra account"}, item.Dependencies)
}

func TestRoadmapFirstItem(t *testing.T) {
	assert.Nil(t, ParsedRoadmap{}.FirstItem())

	rm := RoadmapParser{}.Parse("# R\n\n## Only\n\ndesc\n")
	first := rm.FirstItem()
	require.NotNil(t, first)
	assert.Equal(t, "Only", first.Title)
}

func TestRoadmapKeepsRaw(t *testing.T) {
	md := "# Roadmap\n\n## A\n"
	assert.Equal(t, md, RoadmapParser{}.Parse(md).Raw)
}
