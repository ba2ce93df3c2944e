package handlers

import (
	"net/http"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	workspace *service.Workspace
}

func NewSessionHandler(w *service.Workspace) *SessionHandler {
	return &SessionHandler{workspace: w}
}

func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace.Session())
}

func (h *SessionHandler) Login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	snap, err := h.workspace.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) Register(c *gin.Context) {
	var form domain.Registration
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	snap, err := h.workspace.Register(c.Request.Context(), c.Param("kind"), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *SessionHandler) Logout(c *gin.Context) {
	snap, err := h.workspace.Logout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var patch domain.User
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	snap, err := h.workspace.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
