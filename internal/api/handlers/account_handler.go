package handlers

import (
	"net/http"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/analytics"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the company's distributors, employees and analytics.
type AccountHandler struct {
	workspace *service.Workspace
	now       func() time.Time
}

func NewAccountHandler(w *service.Workspace) *AccountHandler {
	return &AccountHandler{workspace: w, now: time.Now}
}

func (h *AccountHandler) Distributors(c *gin.Context) {
	ds, err := h.workspace.Distributors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distributors": ds})
}

func (h *AccountHandler) SetDistributorStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	if err := h.workspace.SetDistributorStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) OnboardShop(c *gin.Context) {
	var shop domain.Shop
	if err := c.ShouldBindJSON(&shop); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.workspace.OnboardShop(c.Request.Context(), shop); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *AccountHandler) Employees(c *gin.Context) {
	es, err := h.workspace.Employees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": es})
}

func (h *AccountHandler) AddEmployee(c *gin.Context) {
	var e domain.Employee
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.workspace.AddEmployee(c.Request.Context(), e); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *AccountHandler) CompanyAnalytics(c *gin.Context) {
	data, err := h.workspace.CompanyAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// Calendar answers ?month=YYYY-MM, defaulting to the current month.
func (h *AccountHandler) Calendar(c *gin.Context) {
	year, month, err := analytics.ParseMonth(c.Query("month"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	cal, err := h.workspace.SalesCalendar(c.Request.Context(), c.Param("distributorId"), year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": cal, "activeDays": analytics.ActiveDays(*cal)})
}
