package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/repository"
	"github.com/ideaforge/ideaforge/internal/service"
)

// IdeaHandler owns the idea CRUD surface.
type IdeaHandler struct {
	Ideas *repository.IdeaRepo
}

func NewIdeaHandler(ideas *repository.IdeaRepo) *IdeaHandler {
	return &IdeaHandler{Ideas: ideas}
}

type createIdeaReq struct {
	Kind        string `json:"kind"` // STARTUP | HACKATHON
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ideaResp struct {
	ID               uint64    `json:"id"`
	Kind             string    `json:"kind"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	AnalysisScore    *int      `json:"analysis_score,omitempty"`
	AnalysisFeedback *string   `json:"analysis_feedback,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toIdeaResp(i model.Idea) ideaResp {
	return ideaResp{
		ID:               i.ID,
		Kind:             string(i.Kind),
		Title:            i.Title,
		Description:      i.Description,
		AnalysisScore:    i.AnalysisScore,
		AnalysisFeedback: i.AnalysisFeedback,
		CreatedAt:        i.CreatedAt,
	}
}

// Create registers a new idea for the current user.
func (h *IdeaHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createIdeaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/description required"})
	}
	kind := model.IdeaKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if kind != model.IdeaKindStartup && kind != model.IdeaKindHackathon {
		kind = model.IdeaKindStartup
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Ideas.Create(ctx, uid, kind, req.Title, req.Description)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create idea failed"})
	}
	idea, err := h.Ideas.FindByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toIdeaResp(idea))
}

// List returns the current user's ideas, newest first.
func (h *IdeaHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ideas, err := h.Ideas.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list ideas failed"})
	}
	out := make([]ideaResp, 0, len(ideas))
	for _, i := range ideas {
		out = append(out, toIdeaResp(i))
	}
	return c.JSON(http.StatusOK, echo.Map{"ideas": out})
}

// Get returns a single idea owned by the current user.
func (h *IdeaHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	idea, err := h.Ideas.FindByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if !idea.BelongsToUser(uid) {
		return respondError(c, service.ErrUnauthorizedAccess)
	}
	return c.JSON(http.StatusOK, toIdeaResp(idea))
}
