package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/credit"
	"github.com/ideaforge/ideaforge/internal/repository"
	"github.com/ideaforge/ideaforge/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it
// to uint64. JWT claims decode numbers as float64, so several shapes
// are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// respondError translates the error taxonomy shared by the
// orchestrator, ledger and repositories into an HTTP response.
// Anything outside the taxonomy is an opaque internal error.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, credit.ErrInsufficientCredits):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient credits"})
	case errors.Is(err, service.ErrUnauthorizedAccess):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrIdeaNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "idea not found"})
	case errors.Is(err, repository.ErrDocumentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "version conflict, retry"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
