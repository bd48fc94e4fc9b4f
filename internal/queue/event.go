// Package queue defines message payloads exchanged over the message
// broker, plus the publisher and the background consumer that turns
// events into the activity log.
package queue

// DocumentGeneratedEvent is published after a document version was
// successfully generated or regenerated. It carries enough for
// downstream consumers to log, notify or feed analytics without
// querying the primary database.
type DocumentGeneratedEvent struct {
	DocumentID   string `json:"document_id"`
	IdeaID       uint64 `json:"idea_id"`
	UserID       uint64 `json:"user_id"`
	DocumentType string `json:"document_type"`
	Title        string `json:"title"`
	Version      uint32 `json:"version"`
	Regenerated  bool   `json:"regenerated"`
	GeneratedAt  string `json:"generated_at"`
}

// ExportCompletedEvent is published when an export bundle was built
// and handed to the user.
type ExportCompletedEvent struct {
	IdeaID      uint64 `json:"idea_id"`
	UserID      uint64 `json:"user_id"`
	IdeaName    string `json:"idea_name"`
	Filename    string `json:"filename"`
	Format      string `json:"format"`
	FileCount   int    `json:"file_count"`
	CompletedAt string `json:"completed_at"`
}
