package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/service"
)

// DocumentHandler exposes the document workflow over HTTP. All the
// real decisions live in the service; the handler parses params,
// applies a request timeout and maps sentinel errors to status codes.
type DocumentHandler struct {
	Docs *service.DocumentService
}

func NewDocumentHandler(docs *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Docs: docs}
}

type updateDocumentReq struct {
	Content    string `json:"content"`
	DocumentID string `json:"document_id"` // optional optimistic check
}

type restoreDocumentReq struct {
	Version uint32 `json:"version"`
}

type documentResp struct {
	ID           string    `json:"id"`
	IdeaID       uint64    `json:"idea_id"`
	DocumentType string    `json:"document_type"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Version      uint32    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDocumentResp(d model.Document) documentResp {
	return documentResp{
		ID:           d.ID,
		IdeaID:       d.IdeaID,
		DocumentType: string(d.DocumentType),
		Title:        d.Title,
		Content:      d.Content,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
	}
}

// parseDocParams reads the :id and :type path params. The type is
// accepted in URL form ("technical-design") or enum form
// ("TECHNICAL_DESIGN").
func parseDocParams(c echo.Context) (uint64, model.DocumentType, bool) {
	ideaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, "", false
	}
	raw := strings.ToUpper(strings.ReplaceAll(c.Param("type"), "-", "_"))
	if !model.ValidDocumentType(raw) {
		return 0, "", false
	}
	return ideaID, model.DocumentType(raw), true
}

// Generate creates version 1 of a document type for an idea. Charges
// credits before calling the AI provider.
func (h *DocumentHandler) Generate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, docType, ok := parseDocParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id or document type"})
	}

	// Generation waits on an external model, so the timeout is far
	// longer than the DB-only handlers use.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.Docs.Generate(ctx, ideaID, uid, docType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toDocumentResp(doc))
}

// Update appends a manually edited version. Free of charge.
func (h *DocumentHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, docType, ok := parseDocParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id or document type"})
	}
	var req updateDocumentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.Docs.Update(ctx, ideaID, uid, docType, req.Content, req.DocumentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toDocumentResp(doc))
}

// Regenerate produces a fresh AI version on top of the existing chain.
func (h *DocumentHandler) Regenerate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, docType, ok := parseDocParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id or document type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	doc, err := h.Docs.Regenerate(ctx, ideaID, uid, docType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toDocumentResp(doc))
}

// Restore appends a new version carrying the content of an older one.
func (h *DocumentHandler) Restore(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, docType, ok := parseDocParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id or document type"})
	}
	var req restoreDocumentReq
	if err := c.Bind(&req); err != nil || req.Version == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.Docs.RestoreVersion(ctx, ideaID, uid, docType, req.Version)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toDocumentResp(doc))
}

// Latest returns the newest version of one document type.
func (h *DocumentHandler) Latest(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, docType, ok := parseDocParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id or document type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	versions, err := h.Docs.GetVersions(ctx, ideaID, uid, docType)
	if err != nil {
		return respondError(c, err)
	}
	if len(versions) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	}
	return c.JSON(http.StatusOK, toDocumentResp(versions[0]))
}

// Versions returns the full history of one document type, newest
// first.
func (h *DocumentHandler) Versions(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, docType, ok := parseDocParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id or document type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	versions, err := h.Docs.GetVersions(ctx, ideaID, uid, docType)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]documentResp, 0, len(versions))
	for _, v := range versions {
		out = append(out, toDocumentResp(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"versions": out})
}
