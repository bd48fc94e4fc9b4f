package model

import "time"

// IdeaKind distinguishes the two submission flows.  It selects which
// analysis document type is produced and which prompt the AI provider
// receives.
type IdeaKind string

const (
	IdeaKindStartup   IdeaKind = "STARTUP"
	IdeaKindHackathon IdeaKind = "HACKATHON"
)

// Idea is the user-submitted concept that owns zero or more document
// version chains.  AnalysisScore and AnalysisFeedback are filled in by
// the initial AI analysis and are carried into later generation
// prompts as context; both are nullable until the analysis has run.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – owner of the idea.
//  Kind             – STARTUP or HACKATHON.
//  Title            – short name chosen by the user.
//  Description      – the raw idea text sent to the AI provider.
//  AnalysisScore    – 0–100 score from the initial analysis (nullable).
//  AnalysisFeedback – free-text feedback from the analysis (nullable).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Idea struct {
	ID               uint64     // ideas.id
	UserID           uint64     // ideas.user_id
	Kind             IdeaKind   // ideas.kind
	Title            string     // ideas.title
	Description      string     // ideas.description
	AnalysisScore    *int       // ideas.analysis_score (nullable)
	AnalysisFeedback *string    // ideas.analysis_feedback (nullable)
	CreatedAt        time.Time  // ideas.created_at
	UpdatedAt        time.Time  // ideas.updated_at
}

// BelongsToUser reports whether the idea is owned by userID.
func (i Idea) BelongsToUser(userID uint64) bool {
	return i.UserID == userID
}
