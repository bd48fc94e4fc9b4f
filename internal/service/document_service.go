// Package service contains the document generation orchestrator: the
// workflow that coordinates the credit ledger, the AI generation port
// and the append-only document store. Each operation runs its steps
// strictly in order (ownership, credit check, AI call, persistence,
// cache invalidation) because a failing step must stop the ones after
// it and trigger compensation for the ones before it. The orchestrator
// holds no locks; concurrent writers racing for the same next version
// are resolved by the store's unique constraint.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ideaforge/ideaforge/internal/ai"
	"github.com/ideaforge/ideaforge/internal/credit"
	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/repository"
)

// IdeaStore is the slice of idea persistence the orchestrator needs.
// SetAnalysis records the outcome of an analysis-type generation on
// the idea row itself.
type IdeaStore interface {
	FindByID(ctx context.Context, id uint64) (model.Idea, error)
	SetAnalysis(ctx context.Context, id uint64, score int, feedback string) error
}

// DocumentStore is the append-only version store contract. Save only
// ever inserts; the latest version for a key is the row with the
// highest version number.
type DocumentStore interface {
	FindLatestVersion(ctx context.Context, ideaID uint64, docType model.DocumentType) (model.Document, error)
	FindAllVersions(ctx context.Context, ideaID uint64, docType model.DocumentType) ([]model.Document, error)
	Save(ctx context.Context, d model.Document) (model.Document, error)
}

// CreditGate is the slice of the ledger the orchestrator uses to
// charge for generation and compensate on failure.
type CreditGate interface {
	CheckBalance(ctx context.Context, userID uint64) (credit.BalanceCheck, error)
	Deduct(ctx context.Context, userID uint64, amount int64, description string, metadata map[string]string) error
	Refund(ctx context.Context, userID uint64, amount int64, reason string) error
}

// Notifier publishes best-effort domain events after successful
// generation; failures are the publisher's to log, never the
// operation's to fail on.
type Notifier interface {
	DocumentGenerated(ctx context.Context, d model.Document, regenerated bool)
}

// DocumentService orchestrates Generate, Update, Regenerate,
// RestoreVersion and GetVersions.
type DocumentService struct {
	ideas    IdeaStore
	docs     DocumentStore
	ledger   CreditGate
	gen      ai.Generator
	costs    credit.CostPolicy
	notifier Notifier // may be nil
}

// NewDocumentService wires the orchestrator. notifier may be nil.
func NewDocumentService(ideas IdeaStore, docs DocumentStore, ledger CreditGate, gen ai.Generator, costs credit.CostPolicy, notifier Notifier) *DocumentService {
	return &DocumentService{ideas: ideas, docs: docs, ledger: ledger, gen: gen, costs: costs, notifier: notifier}
}

// Generate produces version 1 of a document chain. Credits are
// deducted before the AI call and refunded if generation or
// persistence fails, so a failed attempt always nets to zero balance
// change (modulo the audit trail recording both legs).
func (s *DocumentService) Generate(ctx context.Context, ideaID, userID uint64, docType model.DocumentType) (model.Document, error) {
	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		return model.Document{}, err
	}
	if !idea.BelongsToUser(userID) {
		return model.Document{}, ErrUnauthorizedAccess
	}

	cost := s.costs.CostFor(docType)
	if err := s.charge(ctx, userID, cost, fmt.Sprintf("generate %s", docType), map[string]string{
		"idea_id":       fmt.Sprint(ideaID),
		"document_type": string(docType),
	}); err != nil {
		return model.Document{}, err
	}

	gc := s.buildContext(ctx, idea, docType)
	content, err := s.gen.GenerateDocument(ctx, docType, gc)
	if err != nil {
		s.compensate(ctx, userID, cost, err)
		return model.Document{}, err
	}

	doc := model.NewDocument(ideaID, userID, docType, titleFor(docType, idea.Title), content)
	saved, err := s.docs.Save(ctx, doc)
	if err != nil {
		s.compensate(ctx, userID, cost, err)
		return model.Document{}, err
	}
	s.notify(ctx, saved, false)
	s.recordAnalysis(ctx, saved)
	return saved, nil
}

// Update appends a new version carrying caller-supplied content.
// Editing is free; only AI generation consumes credits. When the
// caller names the document id it edited (expectedDocID), it must be
// the current latest version's id - a mismatch means the caller held
// a stale version and the operation fails instead of merging.
func (s *DocumentService) Update(ctx context.Context, ideaID, userID uint64, docType model.DocumentType, newContent, expectedDocID string) (model.Document, error) {
	latest, err := s.docs.FindLatestVersion(ctx, ideaID, docType)
	if err != nil {
		return model.Document{}, err
	}
	if !latest.BelongsToUser(userID) {
		return model.Document{}, ErrUnauthorizedAccess
	}
	if expectedDocID != "" && expectedDocID != latest.ID {
		return model.Document{}, repository.ErrDocumentNotFound
	}
	return s.docs.Save(ctx, latest.UpdateContent(newContent))
}

// Regenerate asks the AI provider for a fresh take on an existing
// document, using the latest sibling documents and any analysis
// outcome as context, and appends the result as a new version. The
// deduction's audit metadata records which version was regenerated.
func (s *DocumentService) Regenerate(ctx context.Context, ideaID, userID uint64, docType model.DocumentType) (model.Document, error) {
	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		return model.Document{}, err
	}
	if !idea.BelongsToUser(userID) {
		return model.Document{}, ErrUnauthorizedAccess
	}
	latest, err := s.docs.FindLatestVersion(ctx, ideaID, docType)
	if err != nil {
		return model.Document{}, err
	}
	if !latest.BelongsToUser(userID) {
		return model.Document{}, ErrUnauthorizedAccess
	}

	cost := s.costs.CostFor(docType)
	if err := s.charge(ctx, userID, cost, fmt.Sprintf("regenerate %s", docType), map[string]string{
		"idea_id":          fmt.Sprint(ideaID),
		"document_type":    string(docType),
		"previous_version": fmt.Sprint(latest.Version),
	}); err != nil {
		return model.Document{}, err
	}

	gc := s.buildContext(ctx, idea, docType)
	content, err := s.gen.GenerateDocument(ctx, docType, gc)
	if err != nil {
		s.compensate(ctx, userID, cost, err)
		return model.Document{}, err
	}

	saved, err := s.docs.Save(ctx, latest.UpdateContent(content))
	if err != nil {
		s.compensate(ctx, userID, cost, err)
		return model.Document{}, err
	}
	s.notify(ctx, saved, true)
	s.recordAnalysis(ctx, saved)
	return saved, nil
}

// RestoreVersion re-publishes the content of an earlier version as a
// brand-new top version. The chain is never rewound in place, so the
// full history stays intact. Restoring is free.
func (s *DocumentService) RestoreVersion(ctx context.Context, ideaID, userID uint64, docType model.DocumentType, targetVersion uint32) (model.Document, error) {
	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		return model.Document{}, err
	}
	if !idea.BelongsToUser(userID) {
		return model.Document{}, ErrUnauthorizedAccess
	}
	versions, err := s.docs.FindAllVersions(ctx, ideaID, docType)
	if err != nil {
		return model.Document{}, err
	}
	if len(versions) == 0 {
		return model.Document{}, repository.ErrDocumentNotFound
	}
	if !versions[0].BelongsToUser(userID) {
		return model.Document{}, ErrUnauthorizedAccess
	}

	var target *model.Document
	for i := range versions {
		if versions[i].Version == targetVersion {
			target = &versions[i]
			break
		}
	}
	if target == nil {
		return model.Document{}, repository.ErrDocumentNotFound
	}

	latest := versions[0] // sorted descending by version
	return s.docs.Save(ctx, latest.UpdateContent(target.Content))
}

// GetVersions returns a chain's full history, newest first.
func (s *DocumentService) GetVersions(ctx context.Context, ideaID, userID uint64, docType model.DocumentType) ([]model.Document, error) {
	idea, err := s.ideas.FindByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if !idea.BelongsToUser(userID) {
		return nil, ErrUnauthorizedAccess
	}
	return s.docs.FindAllVersions(ctx, ideaID, docType)
}

// charge verifies the balance and deducts the cost. An insufficient
// balance is a terminal, expected outcome for the whole operation:
// the AI port must not be called after it.
func (s *DocumentService) charge(ctx context.Context, userID uint64, cost int64, description string, metadata map[string]string) error {
	bc, err := s.ledger.CheckBalance(ctx, userID)
	if err != nil {
		return err
	}
	if !bc.Allowed {
		return credit.ErrInsufficientCredits
	}
	return s.ledger.Deduct(ctx, userID, cost, description, metadata)
}

// compensate refunds a deduction after a downstream failure. The
// refund records the original error as its reason; a refund failure
// is logged and never masks the original error being propagated.
func (s *DocumentService) compensate(ctx context.Context, userID uint64, cost int64, cause error) {
	if err := s.ledger.Refund(ctx, userID, cost, cause.Error()); err != nil {
		log.Printf("document-service: refund of %d credits for user %d failed: %v (original error: %v)",
			cost, userID, err, cause)
	}
}

// buildContext gathers the idea text, analysis outcome and the latest
// version of each sibling planning document. Each type's own latest
// is used independently; mixed version counts across types are fine.
func (s *DocumentService) buildContext(ctx context.Context, idea model.Idea, docType model.DocumentType) ai.GenerationContext {
	gc := ai.GenerationContext{
		IdeaText:      idea.Description,
		AnalysisScore: idea.AnalysisScore,
	}
	if idea.AnalysisFeedback != nil {
		gc.AnalysisFeedback = *idea.AnalysisFeedback
	}
	gc.ExistingPRD = s.latestContent(ctx, idea.ID, model.DocTypePRD)
	gc.ExistingTechnicalDesign = s.latestContent(ctx, idea.ID, model.DocTypeTechnicalDesign)
	gc.ExistingArchitecture = s.latestContent(ctx, idea.ID, model.DocTypeArchitecture)
	return gc
}

// latestContent returns the latest content for a sibling type, or ""
// when the chain does not exist yet. Lookup errors other than
// not-found are also treated as absent context: context enrichment is
// never worth failing a paid generation over.
func (s *DocumentService) latestContent(ctx context.Context, ideaID uint64, docType model.DocumentType) string {
	d, err := s.docs.FindLatestVersion(ctx, ideaID, docType)
	if err != nil {
		if !errors.Is(err, repository.ErrDocumentNotFound) {
			log.Printf("document-service: loading sibling %s for idea %d failed: %v", docType, ideaID, err)
		}
		return ""
	}
	return d.Content
}

// recordAnalysis copies an analysis document's score and text onto
// the idea row. The document is already saved; a failed score write
// is logged, not surfaced, since the user still got their document.
func (s *DocumentService) recordAnalysis(ctx context.Context, d model.Document) {
	if d.DocumentType != model.DocTypeStartupAnalysis && d.DocumentType != model.DocTypeHackathonAnalysis {
		return
	}
	score, ok := parseScore(d.Content)
	if !ok {
		log.Printf("document-service: no score found in %s for idea %d", d.DocumentType, d.IdeaID)
		return
	}
	if err := s.ideas.SetAnalysis(ctx, d.IdeaID, score, d.Content); err != nil {
		log.Printf("document-service: recording analysis for idea %d failed: %v", d.IdeaID, err)
	}
}

// parseScore finds the last "Score: NN" style line and returns NN
// clamped to 0..100.
func parseScore(content string) (int, bool) {
	score, found := 0, false
	for _, line := range strings.Split(content, "\n") {
		lower := strings.ToLower(line)
		idx := strings.Index(lower, "score")
		if idx < 0 {
			continue
		}
		n, ok := firstInt(line[idx+len("score"):])
		if !ok {
			continue
		}
		if n > 100 {
			n = 100
		}
		score, found = n, true
	}
	return score, found
}

// firstInt returns the first run of digits in s as an int.
func firstInt(s string) (int, bool) {
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

func (s *DocumentService) notify(ctx context.Context, d model.Document, regenerated bool) {
	if s.notifier != nil {
		s.notifier.DocumentGenerated(ctx, d, regenerated)
	}
}

// titleFor derives a stable display title for a generated document.
func titleFor(docType model.DocumentType, ideaTitle string) string {
	switch docType {
	case model.DocTypePRD:
		return ideaTitle + " - PRD"
	case model.DocTypeTechnicalDesign:
		return ideaTitle + " - Technical Design"
	case model.DocTypeArchitecture:
		return ideaTitle + " - Architecture"
	case model.DocTypeRoadmap:
		return ideaTitle + " - Roadmap"
	case model.DocTypeStartupAnalysis:
		return ideaTitle + " - Startup Analysis"
	case model.DocTypeHackathonAnalysis:
		return ideaTitle + " - Hackathon Analysis"
	}
	return ideaTitle
}
