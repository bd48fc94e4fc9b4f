package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/credit"
	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/repository"
)

// CreditHandler exposes the ledger: balance reads for users, history,
// and an admin-only grant endpoint.
type CreditHandler struct {
	Ledger *credit.Ledger
	Txs    *repository.TransactionRepo
}

func NewCreditHandler(l *credit.Ledger, txs *repository.TransactionRepo) *CreditHandler {
	return &CreditHandler{Ledger: l, Txs: txs}
}

type grantReq struct {
	UserID      uint64 `json:"user_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type transactionResp struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Balance returns the current user's credit standing.
func (h *CreditHandler) Balance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bc, err := h.Ledger.CheckBalance(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bc)
}

// History lists the current user's credit transactions, newest first.
// ?limit=N caps the page size (default 50).
func (h *CreditHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txs, err := h.Txs.ListByUser(ctx, uid, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list transactions failed"})
	}
	out := make([]transactionResp, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionResp{
			ID:          t.ID,
			Amount:      t.Amount,
			Type:        string(t.Type),
			Description: t.Description,
			Metadata:    t.Metadata,
			CreatedAt:   t.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": out})
}

// Grant credits a user's account. Admin only; the route is guarded by
// the role middleware.
func (h *CreditHandler) Grant(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req grantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and positive amount required"})
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "admin grant"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meta := map[string]string{"granted_by": strconv.FormatUint(adminID, 10)}
	if err := h.Ledger.Add(ctx, req.UserID, req.Amount, model.TxAdminAdjustment, desc, meta); err != nil {
		return respondError(c, err)
	}
	balance, err := h.Ledger.Balance(ctx, req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": req.UserID, "credits": balance})
}
