package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType enumerates the kinds of planning documents that can be
// generated for an idea.  The four planning types form a chain
// (PRD → Technical Design → Architecture → Roadmap); the two analysis
// types are produced when the idea is first scored.
type DocumentType string

const (
	DocTypePRD               DocumentType = "PRD"
	DocTypeTechnicalDesign   DocumentType = "TECHNICAL_DESIGN"
	DocTypeArchitecture      DocumentType = "ARCHITECTURE"
	DocTypeRoadmap           DocumentType = "ROADMAP"
	DocTypeStartupAnalysis   DocumentType = "STARTUP_ANALYSIS"
	DocTypeHackathonAnalysis DocumentType = "HACKATHON_ANALYSIS"
)

// ValidDocumentType reports whether s names a known document type.
func ValidDocumentType(s string) bool {
	switch DocumentType(s) {
	case DocTypePRD, DocTypeTechnicalDesign, DocTypeArchitecture,
		DocTypeRoadmap, DocTypeStartupAnalysis, DocTypeHackathonAnalysis:
		return true
	}
	return false
}

// Document is one immutable row in a version chain.  Every content
// mutation (update, regenerate, restore) produces a brand-new row with
// a fresh UUID and version = previous + 1 for the same
// (idea_id, document_type) key; existing rows are never updated or
// deleted.  "Latest" for a key is the row with the highest version.
//
// Fields:
//  ID           – UUID primary key; unique per version row.
//  IdeaID       – idea this document belongs to.
//  UserID       – owner, fixed at creation and never changed.
//  DocumentType – which planning/analysis document this is.
//  Title        – display title.
//  Content      – markdown payload.
//  Version      – position in the chain, starting at 1.
//  CreatedAt    – creation timestamp (UTC).
type Document struct {
	ID           string       // documents.id
	IdeaID       uint64       // documents.idea_id
	UserID       uint64       // documents.user_id
	DocumentType DocumentType // documents.document_type
	Title        string       // documents.title
	Content      string       // documents.content
	Version      uint32       // documents.version
	CreatedAt    time.Time    // documents.created_at
}

// NewDocument constructs the first version of a chain.
func NewDocument(ideaID, userID uint64, docType DocumentType, title, content string) Document {
	return Document{
		ID:           uuid.NewString(),
		IdeaID:       ideaID,
		UserID:       userID,
		DocumentType: docType,
		Title:        title,
		Content:      content,
		Version:      1,
		CreatedAt:    time.Now().UTC(),
	}
}

// UpdateContent returns a new Document carrying the supplied content
// with a fresh identity and version = d.Version + 1.  The receiver is
// not modified; callers persist the returned value as a new row.
func (d Document) UpdateContent(newContent string) Document {
	return Document{
		ID:           uuid.NewString(),
		IdeaID:       d.IdeaID,
		UserID:       d.UserID,
		DocumentType: d.DocumentType,
		Title:        d.Title,
		Content:      newContent,
		Version:      d.Version + 1,
		CreatedAt:    time.Now().UTC(),
	}
}

// BelongsToUser reports whether the document is owned by userID.
// Every orchestrated operation checks this before returning or
// chaining off a document.
func (d Document) BelongsToUser(userID uint64) bool {
	return d.UserID == userID
}
