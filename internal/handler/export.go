package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/export"
	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/queue"
	"github.com/ideaforge/ideaforge/internal/repository"
	"github.com/ideaforge/ideaforge/internal/service"
)

// LatestDocumentFinder is the slice of document persistence the
// export handler needs.
type LatestDocumentFinder interface {
	FindLatestVersion(ctx context.Context, ideaID uint64, docType model.DocumentType) (model.Document, error)
}

// ExportHandler builds downloadable setup bundles out of an idea's
// latest documents.
type ExportHandler struct {
	Ideas    *repository.IdeaRepo
	Docs     LatestDocumentFinder
	Pipeline *export.Pipeline
}

func NewExportHandler(ideas *repository.IdeaRepo, docs LatestDocumentFinder, p *export.Pipeline) *ExportHandler {
	return &ExportHandler{Ideas: ideas, Docs: docs, Pipeline: p}
}

type exportFileResp struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Export assembles the bundle for an idea. ?format=zip streams a ZIP
// download; ?format=individual returns the file list as JSON. A 422
// response lists which source documents are missing or empty.
func (h *ExportHandler) Export(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ideaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id"})
	}
	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatZip
	}
	if format != export.FormatZip && format != export.FormatIndividual {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be zip or individual"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	idea, err := h.Ideas.FindByID(ctx, ideaID)
	if err != nil {
		return respondError(c, err)
	}
	if !idea.BelongsToUser(uid) {
		return respondError(c, service.ErrUnauthorizedAccess)
	}

	pkg, err := h.Pipeline.Build(h.buildSources(ctx, ideaID), idea.Title, format)
	if err != nil {
		var blocked export.ErrNotExportable
		if errors.As(err, &blocked) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":             "idea is not exportable yet",
				"missing_documents": blocked.Result.MissingDocuments,
				"empty_documents":   blocked.Result.EmptyDocuments,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	ev := queue.ExportCompletedEvent{
		IdeaID:      ideaID,
		UserID:      uid,
		IdeaName:    idea.Title,
		Filename:    pkg.Filename,
		Format:      format,
		FileCount:   pkg.FileCount,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue.PublishExportCompleted(ctx, ev); err != nil {
		c.Logger().Warnf("export: publish completed event failed: %v", err)
	}

	if format == export.FormatZip {
		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="`+pkg.Filename+`"`)
		return c.Blob(http.StatusOK, "application/zip", pkg.Zip)
	}

	out := make([]exportFileResp, 0, len(pkg.Files))
	for _, f := range pkg.Files {
		out = append(out, exportFileResp{Path: f.Path, Content: f.Content})
	}
	return c.JSON(http.StatusOK, echo.Map{"filename": pkg.Filename, "files": out})
}

// buildSources assembles the pipeline input from the latest version
// of each document type. The pipeline's source names follow the
// frontend keys, not the document type names: the "techArchitecture"
// source is the TECHNICAL_DESIGN document (stack, libraries, data
// model) and the "design" source is the ARCHITECTURE document
// (overview, components, security).
func (h *ExportHandler) buildSources(ctx context.Context, ideaID uint64) export.Sources {
	return export.Sources{
		PRD:              h.loadSource(ctx, ideaID, model.DocTypePRD),
		TechArchitecture: h.loadSource(ctx, ideaID, model.DocTypeTechnicalDesign),
		Design:           h.loadSource(ctx, ideaID, model.DocTypeArchitecture),
		Roadmap:          h.loadSource(ctx, ideaID, model.DocTypeRoadmap),
	}
}

// loadSource fetches the latest version of one document type. A
// missing chain becomes Exists=false; other lookup errors do too, and
// then surface through validation rather than a 500.
func (h *ExportHandler) loadSource(ctx context.Context, ideaID uint64, docType model.DocumentType) export.Source {
	d, err := h.Docs.FindLatestVersion(ctx, ideaID, docType)
	if err != nil {
		return export.Source{}
	}
	return export.Source{Exists: true, Content: d.Content}
}
