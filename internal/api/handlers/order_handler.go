package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	workspace *service.Workspace
}

func NewOrderHandler(w *service.Workspace) *OrderHandler {
	return &OrderHandler{workspace: w}
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.workspace.Orders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	o, err := h.workspace.SetOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Advance moves the order to the next status in the usual flow.
func (h *OrderHandler) Advance(c *gin.Context) {
	o, err := h.workspace.AdvanceOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Pay(c *gin.Context) {
	o, err := h.workspace.PayOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	o, err := h.workspace.VerifyPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// SalesHandler serves the distributor's sales report rows.
type SalesHandler struct {
	workspace *service.Workspace
}

func NewSalesHandler(w *service.Workspace) *SalesHandler {
	return &SalesHandler{workspace: w}
}

func (h *SalesHandler) Rows(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace.SalesRows())
}

func (h *SalesHandler) AddRow(c *gin.Context) {
	c.JSON(http.StatusCreated, h.workspace.AddSalesRow())
}

func rowIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "row index must be a number")
		return 0, false
	}
	return i, true
}

func (h *SalesHandler) UpdateRow(c *gin.Context) {
	i, ok := rowIndex(c)
	if !ok {
		return
	}
	var patch service.SalesRowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	view, err := h.workspace.UpdateSalesRow(i, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SalesHandler) RemoveRow(c *gin.Context) {
	i, ok := rowIndex(c)
	if !ok {
		return
	}
	view, err := h.workspace.RemoveSalesRow(i)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type salesSubmitRequest struct {
	Date  string                 `json:"date"`
	Items []domain.DraftLineItem `json:"items"`
}

// parseDate accepts RFC 3339 or YYYY-MM-DD; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (h *SalesHandler) bind(c *gin.Context) (salesSubmitRequest, time.Time, bool) {
	var req salesSubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return req, time.Time{}, false
		}
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return req, time.Time{}, false
	}
	return req, date, true
}

// Submit reports the current rows.
func (h *SalesHandler) Submit(c *gin.Context) {
	_, date, ok := h.bind(c)
	if !ok {
		return
	}
	report, err := h.workspace.SubmitSalesDraft(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report, "total": service.SalesTotal(report.Items)})
}

// Report posts the items in the body directly.
func (h *SalesHandler) Report(c *gin.Context) {
	req, date, ok := h.bind(c)
	if !ok {
		return
	}
	report, err := h.workspace.ReportSales(c.Request.Context(), req.Items, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report, "total": service.SalesTotal(report.Items)})
}
