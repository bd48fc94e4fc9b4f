// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as the orchestrator and handlers to distinguish between
// failure scenarios with errors.Is instead of inspecting driver
// errors. ErrVersionConflict in particular is how a lost race to
// append "the next version" of a document surfaces: the documents
// table carries a unique key on (idea_id, document_type, version)
// and the second writer's insert is rejected by the database.
package repository

import "errors"

// ErrUserNotFound is returned when no user row exists for the id.
var ErrUserNotFound = errors.New("user not found")

// ErrIdeaNotFound is returned when the referenced idea does not exist.
var ErrIdeaNotFound = errors.New("idea not found")

// ErrDocumentNotFound is returned when no document row matches the
// requested key, version or explicit document id.
var ErrDocumentNotFound = errors.New("document not found")

// ErrVersionConflict is returned when inserting a document version
// that already exists for its (idea, type) key. Handlers translate
// this into an HTTP 409 so the caller can retry.
var ErrVersionConflict = errors.New("document version conflict")
