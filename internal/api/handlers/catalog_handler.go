package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CatalogHandler serves the ordering views: catalog, draft and stock.
type CatalogHandler struct {
	workspace *service.Workspace
}

func NewCatalogHandler(w *service.Workspace) *CatalogHandler {
	return &CatalogHandler{workspace: w}
}

// EnterView refreshes the data behind a view. A failed refresh still
// answers with the previous data next to the error.
func (h *CatalogHandler) EnterView(c *gin.Context) {
	ctx := c.Request.Context()
	switch name := c.Param("name"); name {
	case service.ViewCatalog:
		snap, err := h.workspace.EnterCatalog(ctx)
		h.viewResponse(c, gin.H{"products": snap.Products, "fetchedAt": snap.FetchedAt, "draft": h.workspace.Draft()}, err)
	case service.ViewSales:
		view, err := h.workspace.EnterSales(ctx)
		h.viewResponse(c, gin.H{"sales": view}, err)
	case service.ViewInventory:
		lines, err := h.workspace.EnterInventory(ctx)
		h.viewResponse(c, gin.H{"inventory": lines}, err)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view " + name})
	}
}

func (h *CatalogHandler) viewResponse(c *gin.Context, body gin.H, err error) {
	if err != nil {
		body["error"] = err.Error()
		c.JSON(StatusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *CatalogHandler) LeaveView(c *gin.Context) {
	h.workspace.LeaveView(c.Param("name"))
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.workspace.SearchCatalog(c.Query("search"))})
}

func (h *CatalogHandler) GetDraft(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace.Draft())
}

type quantityRequest struct {
	Value string `json:"value"`
	Delta *int   `json:"delta"`
}

// SetQuantity stores the clamped quantity; raw input never fails. A delta
// steps the current quantity instead of replacing it.
func (h *CatalogHandler) SetQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	var (
		q     int
		total decimal.Decimal
	)
	if req.Delta != nil {
		q, total = h.workspace.StepDraftQuantity(c.Param("productId"), *req.Delta)
	} else {
		q, total = h.workspace.SetDraftQuantity(c.Param("productId"), req.Value)
	}
	c.JSON(http.StatusOK, gin.H{"productId": c.Param("productId"), "quantity": q, "total": total})
}

type submitRequest struct {
	ShopName string `json:"shopName"`
}

func (h *CatalogHandler) SubmitDraft(c *gin.Context) {
	var req submitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	order, err := h.workspace.SubmitDraft(c.Request.Context(), req.ShopName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

type stockRequest struct {
	Stock      json.RawMessage `json:"stock"`
	Adjustment *int            `json:"stockAdjustment"`
	Reason     string          `json:"reason"`
}

// rawText reads a JSON number or string as the text the user typed.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// UpdateStock takes either {stock} or {stockAdjustment, reason}.
func (h *CatalogHandler) UpdateStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	var err error
	switch {
	case len(req.Stock) > 0 && req.Adjustment != nil:
		badRequest(c, "send either stock or stockAdjustment, not both")
		return
	case len(req.Stock) > 0:
		_, err = h.workspace.Restock(ctx, id, rawText(req.Stock))
	case req.Adjustment != nil:
		_, err = h.workspace.AdjustStock(ctx, id, *req.Adjustment, req.Reason)
	default:
		badRequest(c, "stock or stockAdjustment is required")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": h.workspace.SearchCatalog("")})
}

func (h *CatalogHandler) Inventory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"inventory": h.workspace.InventoryLines()})
}

func (h *CatalogHandler) LowStock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.workspace.LowStock()})
}

type onHandRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CatalogHandler) SetOnHand(c *gin.Context) {
	var req onHandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	if err := h.workspace.SetOnHand(c.Request.Context(), c.Param("productId"), *req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": h.workspace.InventoryLines()})
}
