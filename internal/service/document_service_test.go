package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/credit"
	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/repository"
)

// ----- fakes -----

type fakeIdeas struct {
	ideas map[uint64]model.Idea
}

func (f *fakeIdeas) FindByID(_ context.Context, id uint64) (model.Idea, error) {
	i, ok := f.ideas[id]
	if !ok {
		return model.Idea{}, repository.ErrIdeaNotFound
	}
	return i, nil
}

func (f *fakeIdeas) SetAnalysis(_ context.Context, id uint64, score int, feedback string) error {
	i, ok := f.ideas[id]
	if !ok {
		return repository.ErrIdeaNotFound
	}
	i.AnalysisScore = &score
	i.AnalysisFeedback = &feedback
	f.ideas[id] = i
	return nil
}

type docKey struct {
	ideaID  uint64
	docType model.DocumentType
}

type fakeDocs struct {
	rows    map[docKey][]model.Document
	saveErr error
}

func newFakeDocs() *fakeDocs { return &fakeDocs{rows: map[docKey][]model.Document{}} }

func (f *fakeDocs) FindLatestVersion(_ context.Context, ideaID uint64, docType model.DocumentType) (model.Document, error) {
	chain := f.rows[docKey{ideaID, docType}]
	if len(chain) == 0 {
		return model.Document{}, repository.ErrDocumentNotFound
	}
	return chain[len(chain)-1], nil
}

func (f *fakeDocs) FindAllVersions(_ context.Context, ideaID uint64, docType model.DocumentType) ([]model.Document, error) {
	chain := f.rows[docKey{ideaID, docType}]
	out := make([]model.Document, len(chain))
	copy(out, chain)
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (f *fakeDocs) Save(_ context.Context, d model.Document) (model.Document, error) {
	if f.saveErr != nil {
		return model.Document{}, f.saveErr
	}
	key := docKey{d.IdeaID, d.DocumentType}
	for _, existing := range f.rows[key] {
		if existing.Version == d.Version {
			return model.Document{}, repository.ErrVersionConflict
		}
	}
	f.rows[key] = append(f.rows[key], d)
	return d, nil
}

type gateCall struct {
	op       string
	amount   int64
	metadata map[string]string
}

type fakeGate struct {
	allowed   bool
	balance   int64
	deductErr error
	calls     []gateCall
}

func (f *fakeGate) CheckBalance(_ context.Context, _ uint64) (credit.BalanceCheck, error) {
	return credit.BalanceCheck{Allowed: f.allowed, Credits: f.balance, Tier: "FREE"}, nil
}

func (f *fakeGate) Deduct(_ context.Context, _ uint64, amount int64, _ string, metadata map[string]string) error {
	if f.deductErr != nil {
		return f.deductErr
	}
	f.calls = append(f.calls, gateCall{op: "deduct", amount: amount, metadata: metadata})
	f.balance -= amount
	return nil
}

func (f *fakeGate) Refund(_ context.Context, _ uint64, amount int64, reason string) error {
	f.calls = append(f.calls, gateCall{op: "refund", amount: amount, metadata: map[string]string{"reason": reason}})
	f.balance += amount
	return nil
}

type fakeGen struct {
	content  string
	err      error
	calls    int
	lastCtx  ai.GenerationContext
	lastType model.DocumentType
}

func (f *fakeGen) GenerateDocument(_ context.Context, docType model.DocumentType, gc ai.GenerationContext) (string, error) {
	f.calls++
	f.lastType = docType
	f.lastCtx = gc
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

const (
	ownerID    = uint64(3)
	strangerID = uint64(99)
	ideaID     = uint64(7)
)

func newFixture() (*DocumentService, *fakeDocs, *fakeGate, *fakeGen) {
	ideas := &fakeIdeas{ideas: map[uint64]model.Idea{
		ideaID: {ID: ideaID, UserID: ownerID, Kind: model.IdeaKindStartup,
			Title: "Test Idea", Description: "An idea worth testing."},
	}}
	docs := newFakeDocs()
	gate := &fakeGate{allowed: true, balance: 5}
	gen := &fakeGen{content: "# Generated\n\n## Vision\n\ncontent"}
	svc := NewDocumentService(ideas, docs, gate, gen, credit.NewCostPolicy(nil, 1), nil)
	return svc, docs, gate, gen
}

// ----- tests -----

func TestGenerateHappyPath(t *testing.T) {
	svc, docs, gate, gen := newFixture()

	doc, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), doc.Version)
	assert.Equal(t, model.DocTypePRD, doc.DocumentType)
	assert.Equal(t, "Test Idea - PRD", doc.Title)
	assert.Equal(t, gen.content, doc.Content)
	assert.Equal(t, ownerID, doc.UserID)

	require.Len(t, gate.calls, 1)
	assert.Equal(t, "deduct", gate.calls[0].op)
	assert.Equal(t, int64(1), gate.calls[0].amount)
	assert.Equal(t, int64(4), gate.balance)

	chain := docs.rows[docKey{ideaID, model.DocTypePRD}]
	require.Len(t, chain, 1)
}

func TestGenerateUnknownIdea(t *testing.T) {
	svc, _, gate, gen := newFixture()

	_, err := svc.Generate(context.Background(), 404, ownerID, model.DocTypePRD)
	assert.ErrorIs(t, err, repository.ErrIdeaNotFound)
	assert.Empty(t, gate.calls)
	assert.Zero(t, gen.calls)
}

func TestGenerateOwnershipEnforced(t *testing.T) {
	svc, _, gate, gen := newFixture()

	_, err := svc.Generate(context.Background(), ideaID, strangerID, model.DocTypePRD)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)
	assert.Empty(t, gate.calls)
	assert.Zero(t, gen.calls)
}

func TestGenerateInsufficientCreditsSkipsAI(t *testing.T) {
	svc, _, gate, gen := newFixture()
	gate.allowed = false

	_, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	assert.ErrorIs(t, err, credit.ErrInsufficientCredits)
	assert.Zero(t, gen.calls, "AI provider must not be called without credits")
	assert.Empty(t, gate.calls, "nothing was deducted")
}

func TestGenerateRefundsOnAIFailure(t *testing.T) {
	svc, docs, gate, gen := newFixture()
	gen.err = errors.New("provider timeout")

	_, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider timeout")

	require.Len(t, gate.calls, 2)
	assert.Equal(t, "deduct", gate.calls[0].op)
	assert.Equal(t, "refund", gate.calls[1].op)
	assert.Equal(t, int64(5), gate.balance, "failed attempt nets to zero")
	assert.Contains(t, gate.calls[1].metadata["reason"], "provider timeout")

	assert.Empty(t, docs.rows[docKey{ideaID, model.DocTypePRD}])
}

func TestGenerateRefundsOnPersistFailure(t *testing.T) {
	svc, docs, gate, _ := newFixture()
	docs.saveErr = errors.New("db gone")

	_, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.Error(t, err)

	require.Len(t, gate.calls, 2)
	assert.Equal(t, "refund", gate.calls[1].op)
	assert.Equal(t, int64(5), gate.balance)
}

func TestGenerateBuildsSiblingContext(t *testing.T) {
	svc, docs, _, gen := newFixture()

	prd := model.NewDocument(ideaID, ownerID, model.DocTypePRD, "t", "prd body")
	_, err := docs.Save(context.Background(), prd)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), ideaID, ownerID, model.DocTypeTechnicalDesign)
	require.NoError(t, err)

	assert.Equal(t, "An idea worth testing.", gen.lastCtx.IdeaText)
	assert.Equal(t, "prd body", gen.lastCtx.ExistingPRD)
	assert.Empty(t, gen.lastCtx.ExistingArchitecture)
}

func TestUpdateAppendsVersionWithoutCharging(t *testing.T) {
	svc, docs, gate, gen := newFixture()

	v1, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	gate.calls = nil

	v2, err := svc.Update(context.Background(), ideaID, ownerID, model.DocTypePRD, "edited", v1.ID)
	require.NoError(t, err)

	assert.Equal(t, uint32(2), v2.Version)
	assert.Equal(t, "edited", v2.Content)
	assert.NotEqual(t, v1.ID, v2.ID)
	assert.Empty(t, gate.calls, "editing is free")
	assert.Equal(t, 1, gen.calls, "no AI call for manual edits")

	chain := docs.rows[docKey{ideaID, model.DocTypePRD}]
	require.Len(t, chain, 2)
	assert.Equal(t, gen.content, chain[0].Content, "the old version is untouched")
}

func TestUpdateStaleDocumentID(t *testing.T) {
	svc, _, _, _ := newFixture()

	v1, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), ideaID, ownerID, model.DocTypePRD, "second", v1.ID)
	require.NoError(t, err)

	// editing on top of v1 now that v2 is the latest must fail
	_, err = svc.Update(context.Background(), ideaID, ownerID, model.DocTypePRD, "stale", v1.ID)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestUpdateOwnership(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), ideaID, strangerID, model.DocTypePRD, "hijack", "")
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)
}

func TestUpdateMissingChain(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Update(context.Background(), ideaID, ownerID, model.DocTypePRD, "content", "")
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestRegenerateChargesAndRecordsPreviousVersion(t *testing.T) {
	svc, _, gate, gen := newFixture()

	_, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	gate.calls = nil
	gen.content = "# Regenerated"

	doc, err := svc.Regenerate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)

	assert.Equal(t, uint32(2), doc.Version)
	assert.Equal(t, "# Regenerated", doc.Content)

	require.Len(t, gate.calls, 1)
	assert.Equal(t, "deduct", gate.calls[0].op)
	assert.Equal(t, "1", gate.calls[0].metadata["previous_version"])
}

func TestRegenerateRefundsOnAIFailure(t *testing.T) {
	svc, docs, gate, gen := newFixture()
	ctx := context.Background()

	first, err := svc.Generate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	edited, err := svc.Update(ctx, ideaID, ownerID, model.DocTypePRD, "edited by hand", first.ID)
	require.NoError(t, err)
	gate.calls = nil
	gen.err = errors.New("provider timeout")

	_, err = svc.Regenerate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.Error(t, err)

	require.Len(t, gate.calls, 2)
	assert.Equal(t, "deduct", gate.calls[0].op)
	assert.Equal(t, "refund", gate.calls[1].op)
	assert.Equal(t, int64(4), gate.balance, "only the first generation stays charged")

	chain := docs.rows[docKey{ideaID, model.DocTypePRD}]
	require.Len(t, chain, 2, "failed regeneration must not append a version")
	latest, err := docs.FindLatestVersion(ctx, ideaID, model.DocTypePRD)
	require.NoError(t, err)
	assert.Equal(t, edited.ID, latest.ID)
	assert.Equal(t, uint32(2), latest.Version)
	assert.Equal(t, "edited by hand", latest.Content)
}

func TestRegenerateWithoutExistingDocument(t *testing.T) {
	svc, _, gate, _ := newFixture()

	_, err := svc.Regenerate(context.Background(), ideaID, ownerID, model.DocTypePRD)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
	assert.Empty(t, gate.calls)
}

func TestRestoreVersionIsByteForByte(t *testing.T) {
	svc, _, gate, gen := newFixture()
	ctx := context.Background()

	v1, err := svc.Generate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	_, err = svc.Update(ctx, ideaID, ownerID, model.DocTypePRD, "v2 content", "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, ideaID, ownerID, model.DocTypePRD, "v3 content", "")
	require.NoError(t, err)
	gate.calls = nil
	genCalls := gen.calls

	restored, err := svc.RestoreVersion(ctx, ideaID, ownerID, model.DocTypePRD, 1)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), restored.Version, "restore appends, never rewinds")
	assert.Equal(t, v1.Content, restored.Content, "content is copied byte for byte")
	assert.NotEqual(t, v1.ID, restored.ID)
	assert.Empty(t, gate.calls, "restoring is free")
	assert.Equal(t, genCalls, gen.calls, "no AI call on restore")

	versions, err := svc.GetVersions(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	require.Len(t, versions, 4)
	assert.Equal(t, uint32(4), versions[0].Version)
}

func TestRestoreUnknownVersion(t *testing.T) {
	svc, _, _, _ := newFixture()
	ctx := context.Background()

	_, err := svc.Generate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)

	_, err = svc.RestoreVersion(ctx, ideaID, ownerID, model.DocTypePRD, 9)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestRestoreEmptyChain(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.RestoreVersion(context.Background(), ideaID, ownerID, model.DocTypePRD, 1)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestGetVersionsNewestFirst(t *testing.T) {
	svc, _, _, _ := newFixture()
	ctx := context.Background()

	_, err := svc.Generate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	_, err = svc.Update(ctx, ideaID, ownerID, model.DocTypePRD, "second", "")
	require.NoError(t, err)

	versions, err := svc.GetVersions(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, uint32(2), versions[0].Version)
	assert.Equal(t, uint32(1), versions[1].Version)
}

func TestGetVersionsOwnership(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.GetVersions(context.Background(), ideaID, strangerID, model.DocTypePRD)
	assert.ErrorIs(t, err, ErrUnauthorizedAccess)
}

func TestGenerateAnalysisRecordsScore(t *testing.T) {
	ideas := &fakeIdeas{ideas: map[uint64]model.Idea{
		ideaID: {ID: ideaID, UserID: ownerID, Kind: model.IdeaKindStartup, Title: "Test Idea"},
	}}
	gen := &fakeGen{content: "# Analysis\n\nStrong niche.\n\nScore: 87/100\n"}
	svc := NewDocumentService(ideas, newFakeDocs(), &fakeGate{allowed: true, balance: 5},
		gen, credit.NewCostPolicy(nil, 1), nil)

	_, err := svc.Generate(context.Background(), ideaID, ownerID, model.DocTypeStartupAnalysis)
	require.NoError(t, err)

	idea := ideas.ideas[ideaID]
	require.NotNil(t, idea.AnalysisScore)
	assert.Equal(t, 87, *idea.AnalysisScore)
	require.NotNil(t, idea.AnalysisFeedback)
	assert.Contains(t, *idea.AnalysisFeedback, "Strong niche.")
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		content string
		want    int
		found   bool
	}{
		{"Score: 87/100", 87, true},
		{"**Viability score:** 42", 42, true},
		{"early Score: 10\n\nfinal Score: 60/100", 60, true},
		{"Score: 250/100", 100, true},
		{"no number here", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, found := parseScore(tc.content)
		assert.Equal(t, tc.found, found, tc.content)
		assert.Equal(t, tc.want, got, tc.content)
	}
}

// Full workflow: generate, edit, regenerate, restore, all against one
// chain, verifying the version history and credit movements line up.
func TestWorkflowEndToEnd(t *testing.T) {
	svc, _, gate, gen := newFixture()
	ctx := context.Background()

	v1, err := svc.Generate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)

	_, err = svc.Update(ctx, ideaID, ownerID, model.DocTypePRD, "hand edited", v1.ID)
	require.NoError(t, err)

	gen.content = "# Fresh take"
	_, err = svc.Regenerate(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)

	restored, err := svc.RestoreVersion(ctx, ideaID, ownerID, model.DocTypePRD, 2)
	require.NoError(t, err)
	assert.Equal(t, "hand edited", restored.Content)
	assert.Equal(t, uint32(4), restored.Version)

	// two paid operations (generate, regenerate), two free ones
	assert.Equal(t, int64(3), gate.balance)

	versions, err := svc.GetVersions(ctx, ideaID, ownerID, model.DocTypePRD)
	require.NoError(t, err)
	require.Len(t, versions, 4)
	for i, want := range []uint32{4, 3, 2, 1} {
		assert.Equal(t, want, versions[i].Version)
	}
}
