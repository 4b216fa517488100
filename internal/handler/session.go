package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/model"
	"github.com/iliyamo/snooker-house-api/internal/repository"
	"github.com/iliyamo/snooker-house-api/internal/service"
)

// SessionHandler serves the table-session lifecycle: start, item
// purchases, pause/resume, payments and settlement.  Completed
// sessions are announced on the message queue for downstream
// reporting.
type SessionHandler struct {
	Sessions  *repository.SessionRepo
	Publisher *service.QueuePublisher
}

func NewSessionHandler(s *repository.SessionRepo, p *service.QueuePublisher) *SessionHandler {
	return &SessionHandler{Sessions: s, Publisher: p}
}

type startSessionReq struct {
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	Notes         *string `json:"notes"`
}

// Start opens a session on an active, free table.
func (h *SessionHandler) Start(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req startSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := h.Sessions.Start(c.Request().Context(), tableID, userID, req.CustomerName, req.CustomerPhone, req.Notes)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// Get returns a session with its items and payment ledger.
func (h *SessionHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Sessions.Get(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// List returns the caller's sessions across all their venues, with
// optional status, payment status, table and date filters.
func (h *SessionHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.SessionFilter{
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
	}
	if v := c.QueryParam("table_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.TableID = n
		}
	}
	f.DateFrom, f.DateTo = queryDateRange(c)
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Skip = n
		}
	}
	sessions, err := h.Sessions.List(c.Request().Context(), userID, f)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions, "count": len(sessions)})
}

// Cost returns the session's current cost without persisting anything,
// so the front desk can quote a live price.
func (h *SessionHandler) Cost(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Sessions.CalculateCurrentCost(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id":     s.ID,
		"game_cost":      s.GameCost,
		"items_revenue":  s.ItemsRevenue,
		"total_cost":     s.TotalCost,
		"total_paid":     s.TotalPaid,
		"remaining":      s.Remaining,
		"payment_status": s.PaymentStatus,
	})
}

type addItemReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

// AddItem sells a product into an open session, decrementing stock.
func (h *SessionHandler) AddItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req addItemReq
	if err := c.Bind(&req); err != nil || req.ProductID == 0 || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and quantity required"})
	}
	s, err := h.Sessions.AddItem(c.Request().Context(), id, userID, req.ProductID, req.Quantity)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// RemoveItem takes an item back out of an open session and restores
// its stock.
func (h *SessionHandler) RemoveItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	s, err := h.Sessions.RemoveItem(c.Request().Context(), id, userID, itemID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type sessionActionReq struct {
	Action string  `json:"action"` // pause | resume | update_frames_kittis | add_notes
	Frames *uint32 `json:"frames"`
	Kittis *uint32 `json:"kittis"`
	Notes  *string `json:"notes"`
}

// Update dispatches the in-game actions on an open session.
func (h *SessionHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req sessionActionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()

	var s *model.Session
	switch req.Action {
	case "pause":
		s, err = h.Sessions.Pause(ctx, id, userID)
	case "resume":
		s, err = h.Sessions.Resume(ctx, id, userID)
	case "update_frames_kittis":
		if req.Frames == nil && req.Kittis == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "frames or kittis required"})
		}
		cur, gerr := h.Sessions.Get(ctx, id, userID)
		if gerr != nil {
			return respondRepoError(c, gerr)
		}
		frames, kittis := cur.Frames, cur.Kittis
		if req.Frames != nil {
			frames = *req.Frames
		}
		if req.Kittis != nil {
			kittis = *req.Kittis
		}
		s, err = h.Sessions.UpdateFramesKittis(ctx, id, userID, frames, kittis)
	case "add_notes":
		if req.Notes == nil || strings.TrimSpace(*req.Notes) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "notes required"})
		}
		s, err = h.Sessions.AddNotes(ctx, id, userID, strings.TrimSpace(*req.Notes))
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type paymentReq struct {
	Method        string  `json:"method"` // esewa | online_banking | cash
	Amount        float64 `json:"amount"`
	TransactionID *string `json:"transaction_id"`
	Notes         *string `json:"notes"`
}

// RecordPayment appends a partial payment to the ledger and re-derives
// the payment status.
func (h *SessionHandler) RecordPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidSessionPaymentMethod(req.Method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	s, err := h.Sessions.RecordPayment(c.Request().Context(), id, userID, req.Method, req.Amount, req.TransactionID, req.Notes)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type confirmPaymentReq struct {
	Status        string  `json:"status"` // paid | credit
	Method        string  `json:"method"`
	TransactionID *string `json:"transaction_id"`
	Notes         *string `json:"notes"`
}

// ConfirmPayment settles a session as fully paid or on credit, as the
// operator decides at the counter.
func (h *SessionHandler) ConfirmPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.PaymentStatusPaid && req.Status != model.PaymentStatusCredit {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be paid or credit"})
	}
	if req.Status == model.PaymentStatusPaid && !model.ValidSessionPaymentMethod(req.Method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}
	s, err := h.Sessions.ConfirmPayment(c.Request().Context(), id, userID, req.Status, req.Method, req.TransactionID, req.Notes)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type endSessionReq struct {
	Notes *string `json:"notes"`
}

// End closes a session. When nothing has been paid yet the session is
// left open and the caller gets the final cost back with a flag asking
// for payment confirmation first.
func (h *SessionHandler) End(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var req endSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := h.Sessions.End(c.Request().Context(), id, userID, req.Notes)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentPending) && s != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"requiresPaymentConfirmation": true,
				"session_id":                  s.ID,
				"total_cost":                  s.TotalCost,
				"total_paid":                  s.TotalPaid,
				"remaining":                   s.Remaining,
			})
		}
		return respondRepoError(c, err)
	}
	if h.Publisher != nil {
		h.Publisher.PublishSessionCompleted(s)
	}
	return c.JSON(http.StatusOK, s)
}

// Cancel aborts a session, restoring item stock and resetting the
// payment ledger.
func (h *SessionHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Sessions.Cancel(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
